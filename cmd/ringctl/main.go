package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/luhtfiimanal/go-ringbuf/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		logrus.WithError(err).Error("ringctl failed")
		os.Exit(1)
	}
}
