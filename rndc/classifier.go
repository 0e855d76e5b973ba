package rndc

import (
	"html"
	"regexp"
	"strings"
)

// Tags are matched by regex on the text, not by XML parsing: RNDC answers
// 200 for accepted and rejected messages alike, and frequently returns the
// inner document entity-encoded inside the SOAP return element.
var (
	ingresoTagRe     = regexp.MustCompile(`(?i)<ingresoid\s*/?>`)
	ingresoValueRe   = regexp.MustCompile(`(?is)<ingresoid>\s*([^<]*?)\s*</ingresoid>`)
	errorTagRe       = regexp.MustCompile(`(?i)<errormsg\s*/?>`)
	errorValueRe     = regexp.MustCompile(`(?is)<errormsg>\s*(.*?)\s*</errormsg>`)
	consecutiveRe    = regexp.MustCompile(`(?is)<consecutivo>\s*([^<]*?)\s*</consecutivo>`)
	securityCodeRe   = regexp.MustCompile(`(?is)<seguridadqr>\s*([^<]*?)\s*</seguridadqr>`)
	errorPhrase      = "Error RNDC"
	processedMessage = "Response processed"
)

// Result is the business outcome of one RNDC answer.
type Result struct {
	Success      bool
	TrackingID   string
	Consecutive  string
	SecurityCode string
	Message      string
	RawBody      string
}

// Classify decides whether RNDC accepted a message. Acceptance requires an
// ingresoid element and no ErrorMSG element or "Error RNDC" phrase; an
// error marker wins over a tracking id.
func Classify(raw string) Result {
	text := decodeEntities(raw)
	res := Result{RawBody: raw}

	hasIngreso := ingresoTagRe.MatchString(text)
	hasError := errorTagRe.MatchString(text) || strings.Contains(text, errorPhrase)

	if hasIngreso && !hasError {
		res.Success = true
		res.TrackingID = firstGroup(ingresoValueRe, text)
		res.Consecutive = firstGroup(consecutiveRe, text)
		res.SecurityCode = firstGroup(securityCodeRe, text)
		if res.TrackingID != "" {
			res.Message = "Accepted by RNDC, ingresoid " + res.TrackingID
		} else {
			res.Message = processedMessage
		}
		return res
	}

	if msg := firstGroup(errorValueRe, text); msg != "" {
		res.Message = msg
	} else {
		res.Message = processedMessage
	}
	return res
}

// decodeEntities unescapes up to two levels of HTML entities so that
// &lt;ingresoid&gt; and &amp;lt;ingresoid&amp;gt; read as tags.
func decodeEntities(s string) string {
	for i := 0; i < 2; i++ {
		if !strings.Contains(s, "&") {
			break
		}
		s = html.UnescapeString(s)
	}
	return s
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
