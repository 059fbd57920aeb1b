package nanopipe

import (
	"go.uber.org/zap"
)

// Device is used to create a forwarding loop from a receiving socket into
// a sending one, e.g. a PULL socket collecting work that a PUSH socket
// hands out again.  Multipart messages are forwarded part by part and
// keep their boundaries.
//
// If the plumbing is successful, nil will be returned and a goroutine
// forwards messages until either socket returns an error, which generally
// means closing either socket will cause the goroutine to exit.  Apart
// from closing the sockets, no futher operations should be performed
// against them.
func Device(from Socket, to Socket) error {
	if from == nil || to == nil {
		return ErrClosed
	}

	if from.GetProtocol().Info().Flags&FlagRecv == 0 ||
		to.GetProtocol().Info().Flags&FlagSend == 0 {
		return ErrBadProto
	}

	go func() {
		err := Forward(from, to)
		Logger().Debug("device stopped",
			zap.String("from", from.ID()), zap.String("to", to.ID()), zap.Error(err))
	}()
	return nil
}

// Forward takes messages from one socket, and sends them to the other
// until one of them fails.  It blocks.
func Forward(from Socket, to Socket) error {
	for {
		m, err := from.RecvMsgMode(Blocking)
		if err != nil {
			return err
		}

		if err = to.SendMsgMode(m, Blocking); err != nil {
			m.Free()
			return err
		}
	}
}
