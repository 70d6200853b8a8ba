package preload

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
)

const verifyWorkers = 4

// Result is the outcome for one URL.
type Result struct {
	URL string
	Err error
}

// Verify reads every url from fsys and checks that it decodes as an image,
// marking each on gate as it finishes. urls are site paths; prefix is stripped
// to map them into fsys. It returns the failures; a cancelled context stops
// work that has not started.
func Verify(ctx context.Context, fsys fs.FS, prefix string, urls []string, gate *Gate) []Result {
	jobs := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < verifyWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				err := checkAsset(fsys, strings.TrimPrefix(u, prefix))
				if gate != nil {
					gate.MarkDone(u, err == nil)
				}
				results <- Result{URL: u, Err: err}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, u := range urls {
			select {
			case jobs <- u:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var failed []Result
	for r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

func checkAsset(fsys fs.FS, name string) error {
	name = strings.TrimPrefix(name, "/")
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	if strings.EqualFold(path.Ext(name), ".svg") {
		return checkSVG(b)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(b)); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

var errNotSVG = errors.New("root element is not svg")

func checkSVG(b []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(b))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return errNotSVG
		}
		if err != nil {
			return err
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local != "svg" {
				return errNotSVG
			}
			return nil
		}
	}
}
