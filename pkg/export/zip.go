package export

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"path"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

// ObjectOpener gives the bundler access to stored attachment bytes.
type ObjectOpener interface {
	Open(objectKey string) (io.ReadCloser, error)
}

// WriteAttachmentsZip bundles every uploaded attachment of a form into one
// archive, each under its question code. A form without attachments still
// produces a valid archive carrying a short explanation file instead.
// Attachments that cannot be read from the store are skipped with a log
// entry so one lost file does not sink the whole bundle.
func WriteAttachmentsZip(
	writer io.Writer,
	files []formTypes.FileDoc,
	store ObjectOpener,
) error {
	zw := zip.NewWriter(writer)

	written := 0
	for _, f := range files {
		src, err := store.Open(f.ObjectKey)
		if err != nil {
			slog.Error("could not open attachment for zip bundle",
				slog.String("objectKey", f.ObjectKey),
				slog.String("error", err.Error()))
			continue
		}

		entry, err := zw.Create(path.Join(f.QuestionCode, f.Filename))
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(entry, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("error writing %s to zip: %w", f.ObjectKey, err)
		}
		written++
	}

	if written == 0 {
		entry, err := zw.Create("NO_ATTACHMENTS.txt")
		if err != nil {
			return err
		}
		_, err = io.WriteString(entry, "This form has no uploaded attachments.\n")
		if err != nil {
			return err
		}
	}

	return zw.Close()
}
