package api

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/extrato-ofx/internal/extract"
	"github.com/insightdelivered/extrato-ofx/internal/extractor"
	"github.com/insightdelivered/extrato-ofx/internal/models"
	"github.com/insightdelivered/extrato-ofx/internal/ofx"
)

const version = "1.0.0"

// pageBreakMarker separates pages in client-side extracted text.
const pageBreakMarker = "\n---PAGE_BREAK---\n"

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool                 `json:"success"`
	Error        string               `json:"error,omitempty"`
	Warning      string               `json:"warning,omitempty"`
	Bank         string               `json:"bank,omitempty"`
	BankName     string               `json:"bankName,omitempty"`
	Period       string               `json:"period,omitempty"`
	Transactions []models.Transaction `json:"transactions"`
	TotalDebit   float64              `json:"totalDebit"`
	TotalCredit  float64              `json:"totalCredit"`
	Count        int                  `json:"count"`
	OFX          string               `json:"ofx,omitempty"`
	FileName     string               `json:"filename,omitempty"`
	Trace        []models.TraceEvent  `json:"trace,omitempty"`
	Degraded     bool                 `json:"degraded,omitempty"`
	Version      string               `json:"version,omitempty"`
}

// RegisterRoutes sets up the HTTP routes.
func RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", HandleHealth)
	app.Get("/api/banks", HandleBanks)
	app.Post("/api/convert", HandleConvert)
}

// HandleHealth reports service liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
		"engine":  "fiber",
	})
}

// HandleBanks lists the supported bank layouts.
func HandleBanks(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"banks": extract.Banks()})
}

// HandleConvert converts one uploaded statement to OFX. The request is
// multipart: "bank" selects the layout, "file" carries the PDF, and an
// optional "extractedText" field carries client-side extracted text (pages
// separated by the page break marker), skipping server-side PDF decoding.
func HandleConvert(c *fiber.Ctx) error {
	bankID := c.FormValue("bank")
	if bankID == "" {
		return writeError(c, fiber.StatusBadRequest, "Missing 'bank' form field.")
	}
	ext, err := extract.New(bankID)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown bank: %q.", bankID))
	}

	text := joinPages(c.FormValue("extractedText"))
	if text == "" {
		text, err = extractUpload(c)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
	}
	if text == "" {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file' or 'extractedText'.")
	}

	if !ext.ValidateFormat(text) {
		return writeError(c, fiber.StatusUnprocessableEntity,
			fmt.Sprintf("The file does not look like a %s statement.", ext.BankName()))
	}

	st, err := ext.Extract(text)
	switch {
	case errors.Is(err, extract.ErrNoTransactions):
		// structurally valid but empty: partial success, no OFX emitted
		resp := buildResponse(st, bankID)
		resp.Warning = "No transactions found in the statement period."
		return c.JSON(resp)
	case err != nil:
		if extract.IsFormatMismatch(err) || extract.IsSectionNotFound(err) {
			return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	resp := buildResponse(st, bankID)
	ofxText, err := ofx.Serialize(st.Transactions, bankID, ext.Classify)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}
	resp.OFX = ofxText
	resp.FileName = ofx.FileName(bankID, time.Now())

	c.Set("Content-Type", "application/json")
	return c.JSON(resp)
}

func buildResponse(st *models.Statement, bankID string) ConvertResponse {
	resp := ConvertResponse{
		Success:  true,
		Bank:     bankID,
		Version:  version,
		Degraded: st.Degraded,
		Trace:    st.Trace,
		BankName: st.BankName,
		Period:   st.Period,
	}
	// nil marshals to JSON null, not []
	resp.Transactions = st.Transactions
	if resp.Transactions == nil {
		resp.Transactions = []models.Transaction{}
	}
	for _, txn := range resp.Transactions {
		if txn.Type == models.Debit {
			resp.TotalDebit += txn.Value
		} else {
			resp.TotalCredit += txn.Value
		}
	}
	resp.Count = len(resp.Transactions)
	return resp
}

// joinPages folds client-side extracted pages back into one text stream.
func joinPages(extracted string) string {
	if extracted == "" {
		return ""
	}
	var pages []string
	for _, page := range strings.Split(extracted, pageBreakMarker) {
		page = strings.TrimSpace(page)
		if page != "" {
			pages = append(pages, page)
		}
	}
	return strings.Join(pages, "\n")
}

// extractUpload saves the uploaded PDF to a temp file and runs server-side
// text extraction on it.
func extractUpload(c *fiber.Ctx) (string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		return "", fmt.Errorf("only PDF files are supported")
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	defer src.Close()

	tmpFile, err := os.CreateTemp("", "extrato-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, src); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	tmpFile.Close()

	pages, err := extractor.ExtractText(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("PDF extraction failed: %w", err)
	}
	return strings.Join(pages, "\n"), nil
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
	})
}
