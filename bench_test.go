package nanopipe

import (
	"strings"
	"sync/atomic"
	"testing"
)

func BenchmarkStringIndex(b *testing.B) {
	addr := "tcp://eth0;124.56.74.124:1990"
	for i := 0; i < b.N; i++ {
		strings.Index(addr, "://")
	}
}

func BenchmarkCAS(b *testing.B) {
	var v int32
	for i := 0; i < b.N; i++ {
		atomic.CompareAndSwapInt32(&v, 0, 1)
	}
}

func BenchmarkNewMessageSize1K(b *testing.B) {
	for i := 0; i < b.N; i++ {
		m := NewMessage(1 << 10)
		m.Free()
	}
}

func BenchmarkNewMessageSize50(b *testing.B) {
	for i := 0; i < b.N; i++ {
		m := NewMessage(50)
		m.Free()
	}
}

func BenchmarkNewMessageSize1KNoFree(b *testing.B) {
	for i := 0; i < b.N; i++ {
		NewMessage(1 << 10)
	}
}

func BenchmarkPipeWriteRead(b *testing.B) {
	p := NewPipe(0, nil, nil)
	m := NewMessage(0)
	for i := 0; i < b.N; i++ {
		p.Write(m)
		p.Read()
	}
}

func BenchmarkDistributorAggregator(b *testing.B) {
	d := NewDistributor()
	a := NewAggregator(nil)
	for i := 0; i < 4; i++ {
		p := NewPipe(0, nil, nil)
		d.Attach(p)
		a.Attach(p)
	}

	m := NewMessage(0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := d.Send(m); err != nil {
			b.Fatal(err)
		}
		if _, err := a.Recv(); err != nil {
			b.Fatal(err)
		}
	}
}
