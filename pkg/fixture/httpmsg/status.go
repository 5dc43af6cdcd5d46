package httpmsg

// reasonPhrases is the minimum status-code table this server guarantees.
// A status code outside this table serializes with an empty reason phrase
// (trailing whitespace trimmed from the status line) but is otherwise a
// perfectly valid status line.
var reasonPhrases = map[int]string{
	101: "Switching Protocols",
	200: "OK",
	301: "Moved Permanently",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	500: "Internal Server Error",
}

// ReasonPhrase returns the known reason phrase for code, or "" if code is
// not in the table.
func ReasonPhrase(code int) string {
	return reasonPhrases[code]
}
