package server

import (
	"log"
	"net"
	"os"
	"testing"
	"time"

	"github.com/eskrenkovic/tictactoe-go/internal/config"

	"go.uber.org/zap"
)

var testServer *Server

// One server per test binary - handler registration with the mediator is
// package-global and must only happen once.
func TestMain(m *testing.M) {
	port, err := freePort()
	if err != nil {
		log.Fatal(err)
	}

	conf := config.Config{
		Logger: zap.NewNop(),
		Port:   port,
	}

	testServer, err = New(conf)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		if err := testServer.Start(); err != nil {
			log.Fatal(err)
		}
	}()

	for i := 0; testServer.Addr() == nil; i++ {
		if i > 100 {
			log.Fatal("server did not start listening")
		}
		time.Sleep(10 * time.Millisecond)
	}

	code := m.Run()

	if err := testServer.Stop(); err != nil {
		log.Fatal(err)
	}

	os.Exit(code)
}

func freePort() (int, error) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}

	port := listener.Addr().(*net.TCPAddr).Port
	return port, listener.Close()
}
