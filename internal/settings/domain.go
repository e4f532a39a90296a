package settings

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Geral holds condominium identity and locale preferences.
type Geral struct {
	NomeCondominio     string `json:"nomeCondominio"`
	EnderecoCondominio string `json:"enderecoCondominio"`
	TelefoneCondominio string `json:"telefoneCondominio"`
	EmailCondominio    string `json:"emailCondominio"`
	FusoHorario        string `json:"fusoHorario"`
	Idioma             string `json:"idioma"`
}

// Reservas holds the booking window policies.
type Reservas struct {
	TempoMinimoReserva       int      `json:"tempoMinimoReserva"`
	TempoMaximoReserva       int      `json:"tempoMaximoReserva"`
	DuracaoMaximaReserva     int      `json:"duracaoMaximaReserva"`
	LimiteReservasPorMorador int      `json:"limiteReservasPorMorador"`
	Areas                    []string `json:"areas"`
}

// Notificacoes holds notification digest preferences.
type Notificacoes struct {
	Tipos               []string `json:"tipos"`
	EmailNotificacoes   string   `json:"emailNotificacoes"`
	HorarioNotificacoes string   `json:"horarioNotificacoes"`
}

// Seguranca holds password and session policies.
type Seguranca struct {
	SenhaMinima     int      `json:"senhaMinima"`
	RequisitosSenha []string `json:"requisitosSenha"`
	SessaoTimeout   int      `json:"sessaoTimeout"`
	Auth            []string `json:"auth"`
}

// Backup holds the backup schedule and last-run marker.
type Backup struct {
	FrequenciaBackup string     `json:"frequenciaBackup"`
	HorarioBackup    string     `json:"horarioBackup"`
	UltimoBackup     *time.Time `json:"ultimoBackup"`
}

// Settings is the single configuration document of one condominium.
type Settings struct {
	CondoID      uuid.UUID    `json:"-"`
	Geral        Geral        `json:"geral"`
	Reservas     Reservas     `json:"reservas"`
	Notificacoes Notificacoes `json:"notificacoes"`
	Seguranca    Seguranca    `json:"seguranca"`
	Backup       Backup       `json:"backup"`
}

var defaultAreas = []string{
	"salao-festas",
	"churrasqueira",
	"quadra",
	"piscina",
	"academia",
	"salao-jogos",
}

// Defaults returns the document used when a condominium never saved anything.
func Defaults(condoID uuid.UUID) Settings {
	return Settings{
		CondoID: condoID,
		Geral: Geral{
			FusoHorario: "America/Sao_Paulo",
			Idioma:      "pt-BR",
		},
		Reservas: Reservas{
			TempoMinimoReserva:       24,
			TempoMaximoReserva:       30,
			DuracaoMaximaReserva:     4,
			LimiteReservasPorMorador: 5,
			Areas:                    slices.Clone(defaultAreas),
		},
		Notificacoes: Notificacoes{
			Tipos:               []string{"reservas", "comunicados", "votacoes", "lembretes"},
			HorarioNotificacoes: "09:00",
		},
		Seguranca: Seguranca{
			SenhaMinima:     8,
			RequisitosSenha: []string{"maiusculas", "minusculas", "numeros"},
			SessaoTimeout:   30,
			Auth:            []string{"email-senha"},
		},
		Backup: Backup{
			FrequenciaBackup: "semanal",
			HorarioBackup:    "02:00",
		},
	}
}

// normalize fills gaps left by partial documents so readers always see a
// complete configuration.
func (s *Settings) normalize() {
	defaults := Defaults(s.CondoID)
	if s.Geral.FusoHorario == "" {
		s.Geral.FusoHorario = defaults.Geral.FusoHorario
	}
	if s.Geral.Idioma == "" {
		s.Geral.Idioma = defaults.Geral.Idioma
	}
	if s.Reservas.TempoMinimoReserva <= 0 {
		s.Reservas.TempoMinimoReserva = defaults.Reservas.TempoMinimoReserva
	}
	if s.Reservas.TempoMaximoReserva <= 0 {
		s.Reservas.TempoMaximoReserva = defaults.Reservas.TempoMaximoReserva
	}
	if s.Reservas.DuracaoMaximaReserva <= 0 {
		s.Reservas.DuracaoMaximaReserva = defaults.Reservas.DuracaoMaximaReserva
	}
	if s.Reservas.LimiteReservasPorMorador <= 0 {
		s.Reservas.LimiteReservasPorMorador = defaults.Reservas.LimiteReservasPorMorador
	}
	if len(s.Reservas.Areas) == 0 {
		s.Reservas.Areas = slices.Clone(defaults.Reservas.Areas)
	}
	if s.Notificacoes.HorarioNotificacoes == "" {
		s.Notificacoes.HorarioNotificacoes = defaults.Notificacoes.HorarioNotificacoes
	}
	if len(s.Notificacoes.Tipos) == 0 {
		s.Notificacoes.Tipos = slices.Clone(defaults.Notificacoes.Tipos)
	}
	if s.Seguranca.SenhaMinima <= 0 {
		s.Seguranca.SenhaMinima = defaults.Seguranca.SenhaMinima
	}
	if s.Seguranca.SessaoTimeout <= 0 {
		s.Seguranca.SessaoTimeout = defaults.Seguranca.SessaoTimeout
	}
	if len(s.Seguranca.Auth) == 0 {
		s.Seguranca.Auth = slices.Clone(defaults.Seguranca.Auth)
	}
	if s.Backup.FrequenciaBackup == "" {
		s.Backup.FrequenciaBackup = defaults.Backup.FrequenciaBackup
	}
	if s.Backup.HorarioBackup == "" {
		s.Backup.HorarioBackup = defaults.Backup.HorarioBackup
	}
}
