package session

import (
	"os"

	"bmpedit/transform"
)

type CLICmd struct {
	Image     string `arg:"" optional:"" help:"Bitmap to start with. Asked for when not given."`
	Corrected bool   `help:"Vignette falloff measured against both dimensions" default:"false"`
}

func (c *CLICmd) Run(pipeline *transform.Pipeline) error {
	s := New(pipeline, os.Stdin, os.Stdout)
	s.Corrected = c.Corrected
	if c.Image != "" {
		if err := s.Open(c.Image); err != nil {
			return err
		}
	}
	return s.Run()
}
