// Package export produces XLSX audit workbooks for finished and
// in-flight import sessions.
package export

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/caseflow-app/client-aggregator/internal/entity"
)

// Service is a tiny façade that turns a session snapshot into XLSX
// bytes: one sheet per concern (profiles, salaries, conflict log,
// per-file outcomes).
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// SessionReportXLSX returns the audit workbook for a session snapshot.
func (s *Service) SessionReportXLSX(state entity.SessionState) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()

	clientKeys := make([]string, 0, len(state.Profiles))
	for key := range state.Profiles {
		clientKeys = append(clientKeys, key)
	}
	sort.Strings(clientKeys)

	if err := s.writeProfiles(f, state, clientKeys); err != nil {
		return nil, err
	}
	if err := s.writeSalaries(f, state, clientKeys); err != nil {
		return nil, err
	}
	if err := s.writeConflicts(f, state, clientKeys); err != nil {
		return nil, err
	}
	if err := s.writeOutcomes(f, state); err != nil {
		return nil, err
	}

	// Drop the default sheet so the workbook opens on Profiles.
	_ = f.DeleteSheet("Sheet1")
	if index, err := f.GetSheetIndex("Profiles"); err == nil && index >= 0 {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("export.session_report.ok",
		"session_id", state.ID,
		"clients", len(clientKeys),
		"bytes", buf.Len(),
		"took", time.Since(start),
	)
	return buf.Bytes(), nil
}

func newSheet(f *excelize.File, name string, headers []string) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func (s *Service) writeProfiles(f *excelize.File, state entity.SessionState, clientKeys []string) error {
	const sheet = "Profiles"
	if err := newSheet(f, sheet, []string{"Client", "Field", "Value", "Normalized", "Source Document", "Source Date"}); err != nil {
		return err
	}
	row := 2
	for _, key := range clientKeys {
		p := state.Profiles[key]
		fields := make([]string, 0, len(p.Fields))
		for name := range p.Fields {
			fields = append(fields, name)
		}
		sort.Strings(fields)
		for _, name := range fields {
			rec := p.Fields[name]
			sourceDate := ""
			if rec.SourceTime != nil {
				sourceDate = rec.SourceTime.Format("2006-01-02")
			}
			writeRow(f, sheet, row, []any{key, name, rec.Value, rec.Normalized, rec.SourceDocID, sourceDate})
			row++
		}
	}
	_ = f.SetColWidth(sheet, "A", "B", 20)
	_ = f.SetColWidth(sheet, "C", "D", 28)
	return nil
}

func (s *Service) writeSalaries(f *excelize.File, state entity.SessionState, clientKeys []string) error {
	const sheet = "Salaries"
	if err := newSheet(f, sheet, []string{"Client", "Employer", "Employer (raw)", "Gross", "Currency", "Pay Period", "Source Document", "Source Date"}); err != nil {
		return err
	}
	row := 2
	for _, key := range clientKeys {
		p := state.Profiles[key]
		for _, e := range p.Salaries {
			sourceDate := ""
			if e.SourceTime != nil {
				sourceDate = e.SourceTime.Format("2006-01-02")
			}
			writeRow(f, sheet, row, []any{key, e.Employer, e.EmployerRaw, e.Gross.StringFixed(2), e.CurrencyCode, e.PayPeriod, e.SourceDocID, sourceDate})
			row++
		}
		// Per-currency totals after each client's entries.
		currencies := make([]string, 0, len(p.Totals))
		for c := range p.Totals {
			currencies = append(currencies, c)
		}
		sort.Strings(currencies)
		for _, c := range currencies {
			writeRow(f, sheet, row, []any{key, "TOTAL", "", p.Totals[c].StringFixed(2), c, "", "", ""})
			row++
		}
	}
	_ = f.SetColWidth(sheet, "A", "C", 24)
	return nil
}

func (s *Service) writeConflicts(f *excelize.File, state entity.SessionState, clientKeys []string) error {
	const sheet = "Conflicts"
	if err := newSheet(f, sheet, []string{"Client", "Kind", "Field", "Winner", "Winner Doc", "Loser", "Loser Doc", "Detail"}); err != nil {
		return err
	}
	row := 2
	for _, key := range clientKeys {
		p := state.Profiles[key]
		for _, c := range p.Conflicts {
			writeRow(f, sheet, row, []any{key, string(c.Kind), c.Field, c.WinnerValue, c.WinnerDocID, c.LoserValue, c.LoserDocID, c.Detail})
			row++
		}
	}
	_ = f.SetColWidth(sheet, "B", "C", 22)
	return nil
}

func (s *Service) writeOutcomes(f *excelize.File, state entity.SessionState) error {
	const sheet = "Files"
	if err := newSheet(f, sheet, []string{"File", "Client", "Status", "Error", "At"}); err != nil {
		return err
	}
	row := 2
	for _, o := range state.Outcomes {
		writeRow(f, sheet, row, []any{o.FileID, o.ClientKey, string(o.Status), o.Error, o.At.Format(time.RFC3339)})
		row++
	}
	_ = f.SetColWidth(sheet, "A", "B", 24)
	return nil
}
