package screenshot

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const quality = 90

// Taker takes a screenshot of a domain's landing page and uploads it
type Taker struct {
	// UploadURL is the endpoint the PNG is PUT to, the file name is appended
	UploadURL  string
	Folder     string
	HTTPClient *http.Client
	Log        *log.Logger
}

// NewTaker returns a Taker uploading to uploadURL
func NewTaker(uploadURL string, logger *log.Logger) *Taker {
	return &Taker{
		UploadURL:  uploadURL,
		Folder:     os.TempDir(),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Log:        logger,
	}
}

// Take returns the URL of the uploaded screenshot of domain, "" if the site is down
// or anything fails
func (t *Taker) Take(ctx context.Context, domain string) string {
	url := t.finalURL(ctx, "https://"+domain)
	if url == "" {
		return ""
	}

	buf, err := capture(ctx, url)
	if err != nil {
		t.Log.Warnf("Can't take a screenshot of domain '%v': %v", domain, err)
		return ""
	}

	file := filepath.Join(t.Folder, domain+".png")
	if err = os.WriteFile(file, buf, 0o644); err != nil {
		t.Log.Warnf("Can't write the .png of the screenshot of domain '%v': %v", domain, err)
		return ""
	}
	defer func() {
		if err := os.Remove(file); err != nil {
			t.Log.Debugf("Can't delete the screenshot file %v: %v", file, err)
		}
	}()
	t.Log.Infof("Screenshot taken for domain '%v'", domain)

	link, err := t.upload(ctx, file, domain+".png")
	if err != nil {
		t.Log.Warnf("Can't upload the screenshot of domain '%v': %v", domain, err)
		return ""
	}
	return link
}

// capture renders url in a headless browser
func capture(ctx context.Context, url string) ([]byte, error) {
	opts := []chromedp.ExecAllocatorOption{}
	opts = append(opts, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Headless,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(1920, 1080),
		chromedp.IgnoreCertErrors,
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	tabCtx, cancelTabCtx := context.WithTimeout(browserCtx, 15*time.Second)
	defer cancelTabCtx()

	var buf []byte
	err := chromedp.Run(
		tabCtx,
		chromedp.Tasks{
			chromedp.Navigate(url),
			chromedp.Sleep(3 * time.Second),
			chromedp.FullScreenshot(&buf, quality),
		},
	)
	return buf, err
}

// upload PUTs the file and returns the body of the answer, the public link
func (t *Taker) upload(ctx context.Context, file, name string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", errors.Wrap(err, "open screenshot")
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.UploadURL+name, f)
	if err != nil {
		return "", errors.Wrap(err, "build upload request")
	}
	req.Header.Set("Content-Type", "image/png")

	res, err := t.HTTPClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "upload")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", errors.Errorf("upload: status %d", res.StatusCode)
	}
	message, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errors.Wrap(err, "read upload answer")
	}
	return strings.TrimSpace(string(message)), nil
}

// finalURL checks the website is online and follows redirects
func (t *Taker) finalURL(ctx context.Context, target string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ""
	}
	res, err := t.HTTPClient.Do(req)
	if err != nil {
		return ""
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return ""
	}
	return res.Request.URL.String()
}
