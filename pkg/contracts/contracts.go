// Package contracts publishes the external formats engagemix reads and writes:
// the interaction log columns and a sample log. Tests in this package check
// the ingest and export code against them and against the snapshot schema in
// testdata.
package contracts

// InteractionLogColumns is the column order of an interaction log export.
var InteractionLogColumns = []string{
	"plataforma",
	"id_conteudo",
	"nome_conteudo",
	"id_usuario",
	"timestamp_interacao",
	"tipo_interacao",
	"watch_duration_seconds",
	"comment_text",
}

// InteractionLogSample is a small, valid interaction log covering every
// content kind and interaction type.
const InteractionLogSample = `plataforma,id_conteudo,nome_conteudo,id_usuario,timestamp_interacao,tipo_interacao,watch_duration_seconds,comment_text
YouTube,1,Intro to Go Video,10,2024-03-01T09:00:00Z,view_start,300,
YouTube,1,Intro to Go Video,10,2024-03-01T09:05:00Z,like,,
YouTube,1,Intro to Go Video,11,2024-03-01T10:00:00Z,comment,,"Great intro, thanks"
Spotify,2,Tech Talk Podcast,11,2024-03-01 11:00:00,view_start,1800,
Spotify,2,Tech Talk Podcast,12,2024-03-02,share,,
Netflix,3,Ocean Documentary,12,2024-03-02T20:00:00-03:00,view_start,3725,
Netflix,3,Ocean Documentary,10,2024-03-03T21:00:00Z,like,,
`
