package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/walletfy/walletfy/pkg/event"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

type csvRow struct {
	Id          string `csv:"id"`
	Name        string `csv:"name"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Date        string `csv:"date"`
	Kind        string `csv:"kind"`
	Attachment  bool   `csv:"has_attachment"`
}

type yamlEvent struct {
	Id          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Amount      string `yaml:"amount"`
	Date        string `yaml:"date"`
	Kind        string `yaml:"kind"`
	Attachment  string `yaml:"attachment,omitempty"`
}

// Export writes events to w. The json output can be imported again; the csv
// output leaves attachments out.
func Export(w io.Writer, events []event.Event, format string) error {
	switch format {
	case FormatJSON:
		dtos := make([]event.EventDTO, 0, len(events))
		for _, e := range events {
			dtos = append(dtos, event.EventToDTO(e))
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(dtos)
	case FormatCSV:
		rows := make([]csvRow, 0, len(events))
		for _, e := range events {
			rows = append(rows, csvRow{
				Id:          e.Id,
				Name:        e.Name,
				Description: e.Description,
				Amount:      e.Amount.String(),
				Date:        e.Date.String(),
				Kind:        string(e.Kind),
				Attachment:  e.Attachment != "",
			})
		}
		return gocsv.Marshal(&rows, w)
	case FormatYAML:
		docs := make([]yamlEvent, 0, len(events))
		for _, e := range events {
			docs = append(docs, yamlEvent{
				Id:          e.Id,
				Name:        e.Name,
				Description: e.Description,
				Amount:      e.Amount.String(),
				Date:        e.Date.String(),
				Kind:        string(e.Kind),
				Attachment:  e.Attachment,
			})
		}
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(docs); err != nil {
			return err
		}
		return encoder.Close()
	}
	return fmt.Errorf("unknown format %q, expected %s, %s or %s", format, FormatJSON, FormatCSV, FormatYAML)
}
