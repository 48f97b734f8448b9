package source

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/etnz/capitol"
)

// HouseClerkURL returns the address of the House Clerk annual financial
// disclosure archive of year.
func HouseClerkURL(year int) string {
	return fmt.Sprintf("https://disclosures-clerk.house.gov/public_disc/financial-pdfs/%dFD.zip", year)
}

// filerInfo is the filer block of a disclosure filing.
type filerInfo struct {
	First  string `xml:"First"`
	Middle string `xml:"Middle"`
	Last   string `xml:"Last"`
}

func (f filerInfo) name() string {
	var parts []string
	for _, p := range []string{f.First, f.Middle, f.Last} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// asset is a transaction of a disclosure filing.
type asset struct {
	Name            string `xml:"Name"`
	TransactionType string `xml:"TransactionType"`
	TransactionDate string `xml:"TransactionDate"`
	Amount          string `xml:"Amount"`
}

// DecodeHouseZIP reads the XML filings of a House Clerk disclosure archive.
//
// Each Asset with a name, a transaction type and a date becomes a record,
// attributed to the filing's filer. Malformed filings are skipped.
func DecodeHouseZIP(r io.ReaderAt, size int64) ([]capitol.RawRecord, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("cannot open disclosure archive: %w", err)
	}
	var records []capitol.RawRecord
	for _, f := range zr.File {
		if !strings.EqualFold(path.Ext(f.Name), ".xml") {
			continue
		}
		filing, err := decodeFile(f)
		if err != nil {
			continue
		}
		records = append(records, filing...)
	}
	return records, nil
}

func decodeFile(f *zip.File) ([]capitol.RawRecord, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return decodeFiling(rc)
}

// decodeFiling returns the records of a single XML filing.
//
// FilerInfo and Asset elements are looked up at any depth, the first
// FilerInfo names the filer of all assets.
func decodeFiling(r io.Reader) ([]capitol.RawRecord, error) {
	dec := xml.NewDecoder(r)
	var filer *filerInfo
	var assets []asset
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "FilerInfo":
			var f filerInfo
			if err := dec.DecodeElement(&f, &start); err != nil {
				return nil, err
			}
			if filer == nil {
				filer = &f
			}
		case "Asset":
			var a asset
			if err := dec.DecodeElement(&a, &start); err != nil {
				return nil, err
			}
			assets = append(assets, a)
		}
	}

	var representative string
	if filer != nil {
		representative = filer.name()
	}
	records := make([]capitol.RawRecord, 0, len(assets))
	for _, a := range assets {
		name := strings.TrimSpace(a.Name)
		kind := strings.TrimSpace(a.TransactionType)
		on := strings.TrimSpace(a.TransactionDate)
		if name == "" || kind == "" || on == "" {
			continue
		}
		records = append(records, capitol.RawRecord{
			capitol.FieldPolitician: representative,
			capitol.FieldTicker:     name,
			capitol.FieldDate:       on,
			capitol.FieldKind:       kind,
			capitol.FieldAmount:     strings.TrimSpace(a.Amount),
		})
	}
	return records, nil
}
