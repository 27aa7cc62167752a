package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/parcelops/pickup-cli/internal/fetcher"
	"github.com/parcelops/pickup-cli/internal/model"
)

var (
	resolveName         string
	resolveManagementNo string
	resolvePhone        string
	resolveBook         string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a recipient name against the address book",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if resolveName == "" {
			return eris.New("resolve: --name is required")
		}

		bookPath := resolveBook
		if bookPath == "" {
			bookPath = cfg.AddressBook.Path
		}
		if bookPath == "" {
			return eris.New("resolve: no address book: set address_book.path or pass --book")
		}

		candidates, err := fetcher.ReadAddressBook(bookPath)
		if err != nil {
			return err
		}

		p, err := newProcessor()
		if err != nil {
			return err
		}

		resolution := p.Resolver().Resolve(model.RecipientRow{
			Name:         resolveName,
			ManagementNo: resolveManagementNo,
			Phone:        resolvePhone,
		}, candidates)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return eris.Wrap(enc.Encode(resolution), "resolve: encode output")
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveName, "name", "", "recipient display name")
	resolveCmd.Flags().StringVar(&resolveManagementNo, "management-no", "", "management number from the spreadsheet row")
	resolveCmd.Flags().StringVar(&resolvePhone, "phone", "", "recipient phone number")
	resolveCmd.Flags().StringVar(&resolveBook, "book", "", "address book CSV (default from config)")
	rootCmd.AddCommand(resolveCmd)
}
