package main

import (
	"os"

	"github.com/corkboard/corkboard/canvasservice"
)

func main() {
	if err := canvasservice.Run(); err != nil {
		os.Exit(1)
	}
}
