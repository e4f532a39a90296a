package accounts

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	if _, err := s.buf.WriteString(line); err != nil {
		return err
	}
	return nil
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

// WriteLedgerCSV streams the period's entries followed by the totals block.
func WriteLedgerCSV(w io.Writer, period string, entries []Entry, summary Summary) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment("# Relatório: Prestação de Contas"); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Período: %s | Lançamentos: %d", period, len(entries))); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"Data", "Tipo", "Categoria", "Descrição", "Valor"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := streamer.writeRow([]string{
			e.Data.Format("2006-01-02"),
			string(e.Tipo),
			e.Categoria,
			e.Descricao,
			formatDecimal(e.Valor),
		}); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"", "", "", "", ""}); err != nil {
		return err
	}
	totalsRows := [][]string{
		{"Totais", "", "Receitas", "", formatDecimal(summary.TotalReceitas)},
		{"Totais", "", "Despesas", "", formatDecimal(summary.TotalDespesas)},
		{"Totais", "", "Saldo", "", formatDecimal(summary.Saldo)},
	}
	for _, row := range totalsRows {
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	categorias := make([]string, 0, len(summary.PorCategoria))
	for categoria := range summary.PorCategoria {
		categorias = append(categorias, categoria)
	}
	sort.Strings(categorias)
	for _, categoria := range categorias {
		if err := streamer.writeRow([]string{"Categoria", "", categoria, "", formatDecimal(summary.PorCategoria[categoria])}); err != nil {
			return err
		}
	}
	return streamer.Close()
}

func formatDecimal(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
