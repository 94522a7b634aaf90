package rag

import "strings"

// ragPromptTemplate has two placeholders, {context} and {question}.
const ragPromptTemplate = "Tu es un assistant IA intelligent basé sur une architecture RAG.\n\n" +
	"RÈGLES IMPORTANTES :\n" +
	"- Utilise PRIORITAIREMENT le CONTEXTE fourni s'il est pertinent.\n" +
	"- Si le contexte est insuffisant, réponds avec des connaissances générales fiables.\n" +
	"- Ne devine pas les informations absentes.\n" +
	"- Réponds de manière claire, structurée et professionnelle.\n\n" +
	"CONTEXTE (extraits de documents) :\n{context}\n\n" +
	"QUESTION UTILISATEUR :\n{question}\n\n" +
	"RÉPONSE FINALE :"

// contextSeparator joins retrieved chunks, most similar first.
const contextSeparator = "\n\n"

// RenderPrompt substitutes context and question in a single pass, so
// placeholder-looking text inside either value is left as is.
func RenderPrompt(context, question string) string {
	r := strings.NewReplacer("{context}", context, "{question}", question)
	return r.Replace(ragPromptTemplate)
}

func buildContext(chunks []DocChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, contextSeparator)
}
