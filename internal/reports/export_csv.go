package reports

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

const csvBufferSize = 32 * 1024

// WriteOverviewCSV streams the consolidated snapshot as CSV.
func WriteOverviewCSV(w io.Writer, overview Overview) error {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true

	if _, err := buf.WriteString(fmt.Sprintf("# Relatório Consolidado | Gerado em: %s\r\n",
		overview.GeradoEm.Format("2006-01-02 15:04"))); err != nil {
		return err
	}
	rows := [][]string{
		{"Seção", "Métrica", "Valor"},
		{"Moradores", "Ativos", strconv.Itoa(overview.UsuariosAtivos)},
		{"Moradores", "Inativos", strconv.Itoa(overview.UsuariosInativos)},
	}
	statuses := make([]string, 0, len(overview.ReservasPorStatus))
	for status := range overview.ReservasPorStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		rows = append(rows, []string{"Reservas", status, strconv.Itoa(overview.ReservasPorStatus[status])})
	}
	rows = append(rows,
		[]string{"Comunicados", "Total", strconv.Itoa(overview.TotalComunicados)},
		[]string{"Votações", "Ativas", strconv.Itoa(overview.VotacoesAtivas)},
		[]string{"Votações", "Encerradas", strconv.Itoa(overview.VotacoesEncerradas)},
	)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buf.Flush()
}
