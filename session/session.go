// Package session is the interactive menu: it keeps the loaded image and its
// edits in a Session and talks to the user over plain reader and writer
// streams.
package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"bmpedit/bitmap"
	"bmpedit/edit"
	"bmpedit/transform"
)

const ext = ".bmp"

// errQuit ends the menu loop: the user typed Q or the input ran out.
var errQuit = errors.New("quit")

var prompts = map[string]string{
	"factor":  "Enter a scaling factor:",
	"turns":   "Enter the number of clockwise quarter turns:",
	"x_scale": "Enter a whole number to expand the width by:",
	"y_scale": "Enter a whole number to expand the height by:",
}

type Session struct {
	Pipeline *transform.Pipeline
	// Corrected selects the corrected vignette falloff.
	Corrected bool

	Source   string
	Original *bitmap.Image
	// Current holds the edits made since Source was opened.
	Current *bitmap.Image

	in  *bufio.Scanner
	out io.Writer
}

func New(pipeline *transform.Pipeline, in io.Reader, out io.Writer) *Session {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)
	return &Session{
		Pipeline: pipeline,
		in:       scanner,
		out:      out,
	}
}

func withExt(name string) string {
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return name + ext
}

// Open loads name, adding .bmp when it has no such extension, and drops
// any edits of the previous image.
func (s *Session) Open(name string) error {
	path := withExt(name)
	img, err := bitmap.Load(path)
	if err != nil {
		return err
	}
	s.Source, s.Original, s.Current = path, img, img
	slog.Debug("image opened", "file", path, "width", img.Width(), "height", img.Height())
	return nil
}

// Apply runs sel on the current image. A failed transform leaves it as it
// was.
func (s *Session) Apply(sel transform.Selector, params transform.Params) error {
	img, err := s.Pipeline.Apply(sel, s.Current, params)
	s.Current = img
	return err
}

// SaveAs writes the current image to name, adding .bmp when missing. It
// refuses to write over the source image and returns the path it used.
func (s *Session) SaveAs(name string) (string, error) {
	path := withExt(name)
	if err := edit.CheckDestination(s.Source, path, true); err != nil {
		return path, err
	}
	if err := bitmap.Save(path, s.Current); err != nil {
		return path, err
	}
	slog.Debug("image saved", "file", path)
	return path, nil
}

// Run prompts for an image unless one is open, then serves the menu until
// the user quits or the input ends.
func (s *Session) Run() error {
	s.println("Bitmap editor")
	if s.Source == "" {
		s.println("Enter input filename (" + ext + " is added when missing):")
		name, err := s.token()
		if errors.Is(err, errQuit) {
			return nil
		} else if err != nil {
			return err
		}
		if err = s.Open(name); err != nil {
			s.printf("Could not load %s: %v\n", withExt(name), err)
			return err
		}
	}

	s.menu()
	for {
		if err := s.round(); err != nil {
			if errors.Is(err, errQuit) {
				break
			}
			return err
		}
	}
	s.println("Thank you for using bmpedit")
	return nil
}

// round serves one menu selection: optionally switch images, transform,
// then save.
func (s *Session) round() error {
	s.println("Enter menu selection (Q to quit):")
	sel, err := s.selection()
	if err != nil {
		return err
	}

	if sel == 0 {
		s.println("Enter the name of the image to switch to:")
		name, err := s.token()
		if err != nil {
			return err
		}
		if err = s.Open(name); err != nil {
			s.printf("Could not load %s: %v\n", withExt(name), err)
			return nil
		}
		s.menu()
		s.println("Which transform do you want to run?")
		if sel, err = s.selection(); err != nil {
			return err
		}
		if sel == 0 {
			s.println("Invalid input")
			return nil
		}
	}

	op, _ := transform.Lookup(transform.Selector(sel))
	s.println(op.Title + " selected")
	params, err := s.params(op)
	if err != nil {
		return err
	}
	if err = s.Apply(op.Selector, params); err != nil {
		s.printf("Could not apply %s: %v\n", op.Name, err)
		return nil
	}
	return s.save()
}

func (s *Session) save() error {
	s.println("Enter the new file name for the processed image (" + ext + " is added when missing):")
	for {
		name, err := s.token()
		if err != nil {
			return err
		}
		path, err := s.SaveAs(name)
		switch {
		case errors.Is(err, edit.ErrSameFile):
			s.println("Do not use the name of the original image, it would be overwritten.")
			s.println("Enter a different filename:")
			continue
		case err != nil:
			s.printf("Failed to write the processed image: %v\n", err)
		default:
			s.println("Image processed and saved as " + path)
		}
		return nil
	}
}

func (s *Session) menu() {
	s.println("IMAGE PROCESSING MENU")
	s.printf(" 0) Change image (current: %s)\n", s.Source)
	for _, op := range transform.Ops() {
		s.printf(" %d) %s\n", op.Selector, op.Title)
	}
}

// params asks for every number op reads. Factors and scales not asked for
// stay neutral.
func (s *Session) params(op transform.Op) (transform.Params, error) {
	params := transform.Params{Factor: 1, XScale: 1, YScale: 1, Corrected: s.Corrected}
	for _, name := range op.Params {
		prompt, ok := prompts[name]
		if !ok {
			continue
		}
		s.println(prompt)
		var err error
		switch name {
		case "factor":
			params.Factor, err = s.readFloat()
		case "turns":
			params.Turns, err = s.readInt()
		case "x_scale":
			params.XScale, err = s.readInt()
		case "y_scale":
			params.YScale, err = s.readInt()
		}
		if err != nil {
			return params, err
		}
	}
	return params, nil
}

func (s *Session) token() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("could not read input: %w", err)
		}
		return "", errQuit
	}
	return s.in.Text(), nil
}

// selection reads a menu number, asking again until it gets one in range.
func (s *Session) selection() (int, error) {
	for {
		tok, err := s.token()
		if err != nil {
			return 0, err
		}
		if strings.EqualFold(tok, "q") {
			return 0, errQuit
		}
		if n, err := strconv.Atoi(tok); err == nil && n >= 0 && n <= len(transform.Ops()) {
			return n, nil
		}
		s.printf("Invalid input. Enter a number between 0 and %d:\n", len(transform.Ops()))
	}
}

func (s *Session) number(parse func(string) error) error {
	for {
		tok, err := s.token()
		if err != nil {
			return err
		}
		if strings.EqualFold(tok, "q") {
			return errQuit
		}
		if err = parse(tok); err == nil {
			return nil
		}
		s.println("Not a number, try again:")
	}
}

func (s *Session) readInt() (n int, err error) {
	err = s.number(func(tok string) (err error) {
		n, err = strconv.Atoi(tok)
		return err
	})
	return n, err
}

func (s *Session) readFloat() (f float64, err error) {
	err = s.number(func(tok string) (err error) {
		f, err = strconv.ParseFloat(tok, 64)
		return err
	})
	return f, err
}

func (s *Session) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
