package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"injaaz-backend/models"
	"injaaz-backend/utils"
	"injaaz-backend/utils/logger"
)

// maxPhotoBytes caps how much of a remote photo the engine will read when
// embedding it into the PDF.
const maxPhotoBytes = 10 << 20

// Engine renders a finalized visit into a PDF and an Excel workbook inside
// the configured generated directory, and returns public download URLs for
// both.
type Engine struct {
	config *models.Config
	logger logger.Logger
	client *http.Client
}

func NewEngine(cfg *models.Config, log logger.Logger) *Engine {
	return &Engine{
		config: cfg,
		logger: log,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Render produces both documents. Excel first, then PDF; a failure in either
// fails the job as a whole.
func (e *Engine) Render(ctx context.Context, visit *models.Visit) (string, string, error) {
	if err := os.MkdirAll(e.config.GeneratedDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create generated dir: %w", err)
	}

	suffix := utils.GenerateUUID()[:8]

	excelName := fmt.Sprintf("site_visit_%s_%s.xlsx", visit.VisitID[:8], suffix)
	if err := e.writeExcel(visit, filepath.Join(e.config.GeneratedDir, excelName)); err != nil {
		return "", "", fmt.Errorf("excel generation failed: %w", err)
	}
	e.logger.Infof("Excel generated for visit %s: %s", visit.VisitID, excelName)

	pdfName := fmt.Sprintf("site_visit_%s_%s.pdf", visit.VisitID[:8], suffix)
	if err := e.writePDF(ctx, visit, filepath.Join(e.config.GeneratedDir, pdfName)); err != nil {
		return "", "", fmt.Errorf("pdf generation failed: %w", err)
	}
	e.logger.Infof("PDF generated for visit %s: %s", visit.VisitID, pdfName)

	return e.downloadURL(pdfName), e.downloadURL(excelName), nil
}

func (e *Engine) downloadURL(filename string) string {
	base := strings.TrimSuffix(e.config.AppBaseURL, "/")
	return fmt.Sprintf("%s%s/site-visit/generated/%s", base, e.config.BasePath, filename)
}

// fetchPhoto downloads a photo from its storage URL for embedding.
func (e *Engine) fetchPhoto(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo fetch returned %s", resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
}

// decodeSignature turns a signature-pad data URI into raw PNG bytes.
// Anything shorter than the minimum signature length is treated as absent.
func decodeSignature(dataURI string) []byte {
	if len(dataURI) < models.MinSignatureLength {
		return nil
	}

	payload := dataURI
	if idx := strings.IndexByte(dataURI, ','); idx >= 0 {
		payload = dataURI[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	return raw
}
