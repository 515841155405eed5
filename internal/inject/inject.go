// Package inject replaces the contents of marked regions in existing HTML
// pages while leaving every byte outside the region untouched.
package inject

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/lotbuilder/internal/output"
)

// Slot names a region of a page. The region starts after the Occurrence-th
// element matching Marker. Without EndLandmark it ends at that element's
// matching end tag. With EndLandmark it ends at the last end tag of the
// marker's element type before the first occurrence of the landmark text.
type Slot struct {
	Name        string
	Marker      string
	Occurrence  int
	EndLandmark string
}

// Region holds byte offsets of a slot's inner content: doc[Start:End].
type Region struct {
	Start int
	End   int
}

// Find locates the region of slot in doc.
func Find(doc []byte, slot Slot) (Region, error) {
	marker, err := ParseMarker(slot.Marker)
	if err != nil {
		return Region{}, fmt.Errorf("slot %q: %w", slot.Name, err)
	}
	occurrence := slot.Occurrence
	if occurrence < 1 {
		occurrence = 1
	}

	z := html.NewTokenizer(bytes.NewReader(doc))
	offset, seen := 0, 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if !errors.Is(z.Err(), io.EOF) {
				return Region{}, fmt.Errorf("slot %q: %w", slot.Name, z.Err())
			}
			return Region{}, fmt.Errorf("%w: slot %q marker %s occurrence %d (found %d)",
				ErrMarkerNotFound, slot.Name, marker, occurrence, seen)
		}
		size := len(z.Raw())
		if tt == html.StartTagToken && marker.Matches(z.Token()) {
			seen++
			if seen == occurrence {
				start := offset + size
				var end int
				if slot.EndLandmark != "" {
					end, err = landmarkEnd(doc, start, marker.Tag, slot.EndLandmark)
				} else {
					end, err = balancedEnd(z, start, marker.Tag)
				}
				if err != nil {
					return Region{}, fmt.Errorf("slot %q: %w", slot.Name, err)
				}
				return Region{Start: start, End: end}, nil
			}
		}
		offset += size
	}
}

// balancedEnd continues z from offset until the end tag that closes the
// marker element.
func balancedEnd(z *html.Tokenizer, offset int, tag string) (int, error) {
	depth := 1
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return 0, fmt.Errorf("%w: no </%s> closes the marker", ErrRegionUnterminated, tag)
		}
		size := len(z.Raw())
		switch tt {
		case html.StartTagToken, html.EndTagToken:
			name, _ := z.TagName()
			if string(name) != tag {
				break
			}
			if tt == html.StartTagToken {
				depth++
				break
			}
			depth--
			if depth == 0 {
				return offset, nil
			}
		}
		offset += size
	}
}

// landmarkEnd finds the last </tag> between start and the first occurrence
// of landmark after start.
func landmarkEnd(doc []byte, start int, tag, landmark string) (int, error) {
	idx := bytes.Index(doc[start:], []byte(landmark))
	if idx < 0 {
		return 0, fmt.Errorf("%w: landmark %q not found after marker", ErrRegionUnterminated, landmark)
	}
	limit := start + idx

	z := html.NewTokenizer(bytes.NewReader(doc[start:limit]))
	offset, last := start, -1
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.EndTagToken {
			if name, _ := z.TagName(); string(name) == tag {
				last = offset
			}
		}
		offset += len(z.Raw())
	}
	if last < 0 {
		return 0, fmt.Errorf("%w: no </%s> before landmark %q", ErrRegionUnterminated, tag, landmark)
	}
	return last, nil
}

// Inject replaces the region of slot in doc with "\n" + fragment + "\n".
// Running Inject on its own output with the same fragment returns the same
// bytes.
func Inject(doc []byte, slot Slot, fragment string) ([]byte, error) {
	region, err := Find(doc, slot)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(doc)-(region.End-region.Start)+len(fragment)+2)
	out = append(out, doc[:region.Start]...)
	out = append(out, '\n')
	out = append(out, fragment...)
	out = append(out, '\n')
	out = append(out, doc[region.End:]...)
	return out, nil
}

// Result reports what InjectFile did.
type Result struct {
	Src     string
	Dst     string
	Changed bool
}

// InjectFile injects fragment into the page at src and writes the result to
// dst. A missing src yields ErrPageNotFound. When injection fails dst is not
// touched. dst is only rewritten when its content changes.
func InjectFile(src, dst string, slot Slot, fragment string) (Result, error) {
	res := Result{Src: src, Dst: dst}

	// #nosec G304 -- template page path comes from configuration
	doc, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("%w: %s", ErrPageNotFound, src)
		}
		return res, fmt.Errorf("read %s: %w", src, err)
	}

	out, err := Inject(doc, slot, fragment)
	if err != nil {
		return res, fmt.Errorf("%s: %w", src, err)
	}

	// #nosec G304 -- output path comes from configuration
	if existing, err := os.ReadFile(dst); err == nil && bytes.Equal(existing, out) {
		return res, nil
	}
	if err := output.WriteFileAtomic(dst, out); err != nil {
		return res, err
	}
	res.Changed = true
	return res, nil
}
