package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/walletfy/walletfy/pkg/event"
)

// record accepts both the current field names and the ones used by the
// browser version of the app, which stored events under "walletfy-events".
type record struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Nombre      string `json:"nombre"`
	Description string `json:"description"`
	Descripcion string `json:"descripcion"`
	Amount      any    `json:"amount"`
	Cantidad    any    `json:"cantidad"`
	Date        string `json:"date"`
	Fecha       string `json:"fecha"`
	Kind        string `json:"kind"`
	Tipo        string `json:"tipo"`
	Attachment  string `json:"attachment"`
	Adjunto     string `json:"adjunto"`
}

var legacyKinds = map[string]string{
	"ingreso": string(event.Income),
	"egreso":  string(event.Expense),
}

// ParseRecords decodes a JSON array of events into candidates. Each record
// may use either naming; current names win when both are present.
func ParseRecords(data []byte) ([]event.Candidate, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var records []record
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("expected a JSON array of events: %w", err)
	}

	candidates := make([]event.Candidate, 0, len(records))
	for _, r := range records {
		kind := firstNonEmpty(r.Kind, r.Tipo)
		if mapped, ok := legacyKinds[kind]; ok {
			kind = mapped
		}
		amount := r.Amount
		if amount == nil {
			amount = r.Cantidad
		}
		candidates = append(candidates, event.Candidate{
			Id:          r.Id,
			Name:        firstNonEmpty(r.Name, r.Nombre),
			Description: firstNonEmpty(r.Description, r.Descripcion),
			Amount:      amount,
			Date:        firstNonEmpty(r.Date, r.Fecha),
			Kind:        kind,
			Attachment:  firstNonEmpty(r.Attachment, r.Adjunto),
		})
	}
	return candidates, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
