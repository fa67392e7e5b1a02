package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	minQRSize = 64
	maxQRSize = 1024
)

var ErrInvalidQRSize = errors.New("invalid QR size")

// QRCodeEncoder matches qrcode.Encode so tests can swap it.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

type QRService struct {
	publicBaseURL string
	encode        QRCodeEncoder
}

func NewQRService(publicBaseURL string, encode QRCodeEncoder) *QRService {
	if encode == nil {
		encode = qrcode.Encode
	}
	return &QRService{publicBaseURL: strings.TrimRight(publicBaseURL, "/"), encode: encode}
}

// ViewerURL is the page spectators open to follow a tournament's draw.
func (s *QRService) ViewerURL(tournamentID string) string {
	return fmt.Sprintf("%s/tournaments/%s/draw/live", s.publicBaseURL, url.PathEscape(tournamentID))
}

// ViewerQRCode renders the viewer link as a PNG.
func (s *QRService) ViewerQRCode(tournamentID string, size int) ([]byte, error) {
	if size < minQRSize || size > maxQRSize {
		return nil, fmt.Errorf("%w: %d is outside %d..%d", ErrInvalidQRSize, size, minQRSize, maxQRSize)
	}
	png, err := s.encode(s.ViewerURL(tournamentID), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode viewer QR code: %w", err)
	}
	return png, nil
}
