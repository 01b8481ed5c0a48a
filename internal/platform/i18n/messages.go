package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	en := language.English
	message.SetString(en, "title.page", "%s | modelhub")
	message.SetString(en, "title.error", "Error")
	message.SetString(en, "title.search", "Search")
	message.SetString(en, "error.heading", "Something went wrong")
	message.SetString(en, "error.diagnostics", "Diagnostics")
	message.SetString(en, "error.back", "Back to dashboard")
	message.SetString(en, "error.not_found", "%s not found")
	message.SetString(en, "error.method_not_allowed", "This action requires %s")
	message.SetString(en, "search.results_for", "Results for %q in %s")
	message.SetString(en, "search.no_results", "No results")
	message.SetString(en, "search.answered_by", "Answered by %s")
	message.SetString(en, "whoami.signed_in_as", "Signed in as %s")

	pt := language.MustParse("pt-BR")
	message.SetString(pt, "title.page", "%s | modelhub")
	message.SetString(pt, "title.error", "Erro")
	message.SetString(pt, "title.search", "Busca")
	message.SetString(pt, "error.heading", "Algo deu errado")
	message.SetString(pt, "error.diagnostics", "Diagnóstico")
	message.SetString(pt, "error.back", "Voltar ao painel")
	message.SetString(pt, "error.not_found", "%s não encontrado")
	message.SetString(pt, "error.method_not_allowed", "Esta ação exige %s")
	message.SetString(pt, "search.results_for", "Resultados para %q em %s")
	message.SetString(pt, "search.no_results", "Nenhum resultado")
	message.SetString(pt, "search.answered_by", "Respondido por %s")
	message.SetString(pt, "whoami.signed_in_as", "Conectado como %s")
}
