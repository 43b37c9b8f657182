package uploader

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shopfeed/internal/atom"
	"shopfeed/internal/content"
	apperrors "shopfeed/internal/errors"
)

// WriteBugReport writes the outgoing batch feed and the raw server response
// to a new file in dir and returns its path. When the response body is a
// structured error document its entries are decoded into the report too.
// Existing report files are never overwritten: the name gets a numeric
// suffix until a free one is found.
func WriteBugReport(dir, merchantID string, sent *atom.Feed, re *apperrors.RequestError) (string, error) {
	file, path, err := createReportFile(dir)
	if err != nil {
		return "", err
	}
	defer file.Close()

	request, err := xml.MarshalIndent(sent, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding sent feed: %w", err)
	}

	fmt.Fprintf(file, "Time: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "Merchant: %s\n", merchantID)
	fmt.Fprintf(file, "\n== Request ==\n%s%s\n", xml.Header, request)
	fmt.Fprintf(file, "\n== Response ==\nStatus: %s\n%s\n", re.Status, re.Body)

	if errs, ok := content.ParseServiceErrors(re.Body); ok {
		fmt.Fprintf(file, "\n== Server errors ==\n")
		for _, se := range errs.Errors {
			fmt.Fprintf(file, "%s ; %s ; %s\n", se.Code, se.Domain, se.InternalReason)
		}
	}

	return path, nil
}

func createReportFile(dir string) (*os.File, string, error) {
	for count := 0; ; count++ {
		name := "bugreport.scapi.txt"
		if count > 0 {
			name = fmt.Sprintf("bugreport%d.scapi.txt", count)
		}
		path := filepath.Join(dir, name)

		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", fmt.Errorf("creating bug report file: %w", err)
		}
	}
}
