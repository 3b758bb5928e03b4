package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/wanjiru2468/fitness_trainer/configs"
	"github.com/wanjiru2468/fitness_trainer/database"
	"github.com/wanjiru2468/fitness_trainer/models"
)

// GenerateInvoicePDF renders the invoice as a PDF, uploads it to Cloudinary
// and stores the URL on the invoice. Best-effort: callers dispatch it in the
// background and only log failures.
func GenerateInvoicePDF(invoiceID uuid.UUID) error {
	var invoice models.Invoice
	err := database.DB.
		Preload("LineItems").
		Preload("Client").
		Preload("Trainer").
		First(&invoice, "id = ?", invoiceID).Error
	if err != nil {
		return err
	}

	htmlData, err := renderInvoiceHTML(invoice)
	if err != nil {
		return fmt.Errorf("failed to render invoice HTML: %w", err)
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}

	uploadURL, err := uploadInvoiceToCloudinary(pdfBytes, invoice.Number)
	if err != nil {
		return fmt.Errorf("failed to upload invoice PDF: %w", err)
	}

	return database.DB.Model(&invoice).Update("pdf_url", uploadURL).Error
}

func renderInvoiceHTML(invoice models.Invoice) (string, error) {
	tmpl, err := template.ParseFiles("templates/invoice.html")
	if err != nil {
		return "", err
	}

	data := struct {
		Number      string
		ClientName  string
		TrainerName string
		LineItems   []models.InvoiceLineItem
		Amount      string
		DueDate     string
		IssuedDate  string
	}{
		Number:      invoice.Number,
		ClientName:  invoice.Client.FullName,
		TrainerName: invoice.Trainer.FullName,
		LineItems:   invoice.LineItems,
		Amount:      fmt.Sprintf("%.2f", invoice.Amount),
		DueDate:     invoice.DueDate.Format("January 2, 2006"),
		IssuedDate:  invoice.CreatedAt.Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadInvoiceToCloudinary(fileBytes []byte, invoiceNumber string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("invoices/%s_%s", invoiceNumber, uuid.New().String()),
		Folder:       "fitness_trainer_invoices",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
