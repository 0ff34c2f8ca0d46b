package input

import (
	"github.com/hupe1980/gallerybench/internal/failure"
	"github.com/hupe1980/gallerybench/internal/fs"
	"github.com/hupe1980/gallerybench/internal/ppm"
	"github.com/hupe1980/gallerybench/model"
)

// LoadMedia decodes every image referenced by rec. Any unreadable image is
// an I/O failure. Iris records with exactly two images are taken as a
// left/right pair.
func LoadMedia(fsys fs.FileSystem, m model.Modality, rec model.Record) ([]model.Media, error) {
	media := make([]model.Media, 0, len(rec.Media))
	for _, entry := range rec.Media {
		md := model.Media{
			Type:   entry.Type,
			FPS:    entry.Type.DefaultFPS(),
			Images: make([]model.Image, 0, len(entry.Refs)),
		}
		for _, ref := range entry.Refs {
			img, err := ppm.ReadFile(fsys, ref.Path)
			if err != nil {
				return nil, failure.Wrap(failure.ErrIO, "media", "decode", rec.ID, err)
			}
			img.Label = ref.Label
			md.Images = append(md.Images, img)
		}
		media = append(media, md)
	}

	if m == model.ModalityIris && len(media) == 1 && len(media[0].Images) == 2 {
		media[0].Images[0].Iris = model.IrisLeft
		media[0].Images[1].Iris = model.IrisRight
	}
	return media, nil
}
