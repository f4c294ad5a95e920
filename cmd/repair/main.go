package main

import (
	"os"

	"VidTube.com/cmd/repair/cli"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := cli.Execute(); err != nil {
		logrus.Errorf("repair: %v", err)
		os.Exit(1)
	}
}
