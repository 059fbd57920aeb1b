package api

type PushSocket struct {
	*Socket
}

// NewPushSocket opens a PUSH socket with all transports registered.
func NewPushSocket() (*PushSocket, error) {
	s, err := NewSocket(AF_SP, PUSH)
	if err != nil {
		return nil, err
	}
	return &PushSocket{Socket: s}, nil
}

type PullSocket struct {
	*Socket
}

// NewPullSocket opens a PULL socket with all transports registered.
func NewPullSocket() (*PullSocket, error) {
	s, err := NewSocket(AF_SP, PULL)
	if err != nil {
		return nil, err
	}
	return &PullSocket{Socket: s}, nil
}
