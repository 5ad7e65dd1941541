//nolint:all
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8000", "backend base URL")
		total     = flag.Int("n", 100, "number of messages to send")
		workers   = flag.Int("c", 4, "concurrent senders")
		fileEvery = flag.Int("file-every", 10, "attach a file to every Nth message (0 disables)")
	)
	flag.Parse()

	endpoint := *baseURL + "/api/messages"

	var (
		seq    atomic.Int64
		sent   atomic.Int64
		failed atomic.Int64
	)

	client := &http.Client{Timeout: 15 * time.Second}

	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				i := seq.Add(1)
				if i > int64(*total) {
					return
				}

				withFile := *fileEvery > 0 && i%int64(*fileEvery) == 0
				if err := sendMessage(client, endpoint, worker, i, withFile); err != nil {
					failed.Add(1)
					log.Printf("message %d failed: %v", i, err)
					continue
				}
				sent.Add(1)
			}
		}(w)
	}
	wg.Wait()

	elapsed := time.Since(start)
	log.Printf("sent %d messages (%d failed) in %s, %.1f msg/s",
		sent.Load(), failed.Load(), elapsed.Round(time.Millisecond),
		float64(sent.Load())/elapsed.Seconds())
}

func sendMessage(client *http.Client, endpoint string, worker int, i int64, withFile bool) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("username", fmt.Sprintf("loadtest-%d", worker)); err != nil {
		return err
	}
	if err := mw.WriteField("text", fmt.Sprintf("load message %d", i)); err != nil {
		return err
	}
	if withFile {
		part, err := mw.CreateFormFile("file", fmt.Sprintf("payload-%d.txt", i))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(part, "payload for message %d\n", i); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	res, err := client.Post(endpoint, mw.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if _, err := io.Copy(io.Discard, res.Body); err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", res.Status)
	}
	return nil
}
