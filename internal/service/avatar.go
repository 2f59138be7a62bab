package service

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Limites de subida: solo jpg/jpeg/png y hasta 7 MB.
const maxAvatarBytes = 7_000_000

const avatarSize = 250

var (
	ErrAvatarTooLarge  = errors.New("avatar exceeds size limit")
	ErrAvatarExtension = errors.New("avatar must be jpg, jpeg or png")
	ErrAvatarDecode    = errors.New("avatar image could not be decoded")
)

// AvatarProcessor valida la imagen subida y la normaliza a PNG 250x250.
type AvatarProcessor struct{}

func NewAvatarProcessor() *AvatarProcessor {
	return &AvatarProcessor{}
}

// Normalize rechaza extension o tamaño invalidos antes de tocar los bytes,
// recorta la imagen a cuadrado cubriendo 250x250 y la reencodea como PNG.
func (p *AvatarProcessor) Normalize(filename string, data []byte) ([]byte, error) {
	if !validAvatarExtension(filename) {
		return nil, ErrAvatarExtension
	}
	if len(data) == 0 || len(data) > maxAvatarBytes {
		return nil, ErrAvatarTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrAvatarDecode
	}

	resized := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var out bytes.Buffer
	if err := imaging.Encode(&out, resized, imaging.PNG); err != nil {
		return nil, ErrAvatarDecode
	}
	return out.Bytes(), nil
}

func validAvatarExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
