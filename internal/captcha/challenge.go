package captcha

import (
	"io"

	dcaptcha "github.com/dchest/captcha"
	"github.com/google/uuid"
)

const (
	DefaultLength = 6

	ImageWidth  = dcaptcha.StdWidth
	ImageHeight = dcaptcha.StdHeight
)

// Challenge is a freshly issued puzzle: the digits to type and the distorted
// image showing them.
type Challenge struct {
	ID     string
	digits []byte
}

// NewChallenge picks length random digits.
func NewChallenge(length int) Challenge {
	if length <= 0 {
		length = DefaultLength
	}

	return Challenge{
		ID:     uuid.NewString(),
		digits: dcaptcha.RandomDigits(length),
	}
}

// Answer is the text a person is expected to type back.
func (c Challenge) Answer() string {
	b := make([]byte, len(c.digits))
	for i, d := range c.digits {
		b[i] = '0' + d
	}

	return string(b)
}

// WriteImage renders the challenge as a PNG.
func (c Challenge) WriteImage(w io.Writer) error {
	img := dcaptcha.NewImage(c.ID, c.digits, ImageWidth, ImageHeight)
	_, err := img.WriteTo(w)
	return err
}
