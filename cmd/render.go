package cmd

import (
	"fmt"
	"os"

	"invoicehub/internal/database"
	"invoicehub/internal/logger"
	"invoicehub/internal/render"
	"invoicehub/internal/storage/postgres"
	"invoicehub/internal/transport/dto"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	renderOwner    string
	renderOutput   string
	renderCompress bool
)

var renderCmd = &cobra.Command{
	Use:   "render [invoice-id]",
	Short: "Render a stored invoice to a PDF file",
	Example: `  # Write invoice-<number>.pdf in the current directory
  invoicehub render 0b1f6c1e-... --owner 5d2a...

  # Uncompressed output, handy for inspecting the PDF source
  invoicehub render 0b1f6c1e-... --owner 5d2a... -o out.pdf --compress=false`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderOwner, "owner", "", "ID of the user owning the invoice")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file (default invoice-<number>.pdf)")
	renderCmd.Flags().BoolVar(&renderCompress, "compress", true, "Compress PDF streams")
	_ = renderCmd.MarkFlagRequired("owner")
}

func runRender(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("render")

	invoiceID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid invoice id %q: %w", args[0], err)
	}
	ownerID, err := uuid.Parse(renderOwner)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", renderOwner, err)
	}

	pool, err := database.NewConnectionPool(cmd.Context(), cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	inv, err := postgres.NewInvoiceRepo(pool).GetByID(cmd.Context(), &dto.GetInvoiceByIDRequest{ID: invoiceID, UserId: ownerID})
	if err != nil {
		return fmt.Errorf("load invoice: %w", err)
	}

	out := renderOutput
	if out == "" {
		out = fmt.Sprintf("invoice-%d.pdf", inv.InvoiceNumber)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}

	renderer := render.NewFPDFRenderer(render.WithCompression(renderCompress), render.WithAuthor(cfg.Mail.FromName))
	if err := renderer.Render(f, inv); err != nil {
		f.Close()
		os.Remove(out)
		return fmt.Errorf("render invoice: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	log.Info().Str("invoice_id", inv.ID.String()).Str("file", out).Msg("Invoice rendered")
	return nil
}
