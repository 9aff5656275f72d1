package media

import "github.com/iconidentify/bskye/internal/domain"

// DirectLink returns the raw media URL for direct media mode. index is
// 1-based; for images it is clamped into range rather than rejected.
func DirectLink(m domain.ResolvedMedia, index int) (string, bool) {
	switch m.Kind {
	case domain.MediaKindVideo:
		if m.Video == nil {
			return "", false
		}
		return m.Video.URL, true

	case domain.MediaKindImages:
		n := len(m.Images)
		if n == 0 {
			return "", false
		}
		i := index - 1
		if i < 0 {
			i = 0
		}
		if i >= n {
			i = n - 1
		}
		return m.Images[i].URL, true

	case domain.MediaKindGIF:
		if m.GIF == nil {
			return "", false
		}
		return m.GIF.URL, true
	}

	return "", false
}
