package main

import (
	"math/rand"
	"time"

	"github.com/Scott-fo/t3-clone/internal/server"
)

func main() {
	rand.New(rand.NewSource(time.Now().UTC().UnixNano()))

	server.NewApp("t3-clone-server").Run()
}
