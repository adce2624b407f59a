package rag

// AssemblePrompt combines the retrieved document and the query into the
// prompt handed to a language model.
func AssemblePrompt(document, query string) string {
	return "Based on the following context, please answer the question.\nContext: " +
		document + "\n\nQuestion: " + query
}
