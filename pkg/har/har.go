package har

// HAR (HTTP Archive) types. Only the fields the mock synthesis reads are
// interpreted; the remaining ones are decoded so archives survive a
// round-trip through the routes command untouched.

// Log contains the HAR log data.
type Log struct {
	Version string  `json:"version,omitempty"`
	Creator Creator `json:"creator"`
	Entries []Entry `json:"entries"`
}

// Creator contains tool information.
type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Entry represents a single captured request/response pair.
type Entry struct {
	StartedDateTime string   `json:"startedDateTime,omitempty"`
	Time            float64  `json:"time,omitempty"`
	Request         Request  `json:"request"`
	Response        Response `json:"response"`
	Timings         *Timings `json:"timings,omitempty"`
	ServerIPAddress string   `json:"serverIPAddress,omitempty"`
	Comment         string   `json:"comment,omitempty"`
}

// Request represents a captured HTTP request.
//
// URL is left untyped: archives written by hand occasionally carry a
// non-string value there, and that has to surface as an error for the
// offending entry rather than as a decode failure for the whole file.
type Request struct {
	Method      string      `json:"method"`
	URL         any         `json:"url"`
	HTTPVersion string      `json:"httpVersion,omitempty"`
	Headers     []Header    `json:"headers"`
	QueryString []NameValue `json:"queryString,omitempty"`
	Cookies     []Cookie    `json:"cookies,omitempty"`
	PostData    *PostData   `json:"postData,omitempty"`
	HeadersSize int         `json:"headersSize,omitempty"`
	BodySize    int         `json:"bodySize,omitempty"`
}

// Response represents a captured HTTP response.
type Response struct {
	Status      int      `json:"status"`
	StatusText  string   `json:"statusText,omitempty"`
	HTTPVersion string   `json:"httpVersion,omitempty"`
	Headers     []Header `json:"headers"`
	Cookies     []Cookie `json:"cookies,omitempty"`
	Content     Content  `json:"content"`
	RedirectURL string   `json:"redirectURL,omitempty"`
	HeadersSize int      `json:"headersSize,omitempty"`
	BodySize    int      `json:"bodySize,omitempty"`
}

// Header represents an HTTP header.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NameValue represents a query parameter.
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Cookie is the informational cookie record some tools attach to entries.
// Response cookies are rebuilt from Set-Cookie headers, not from these.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Expires  string `json:"expires,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
}

// PostData represents a captured request body.
type PostData struct {
	MimeType string  `json:"mimeType"`
	Text     string  `json:"text"`
	Params   []Param `json:"params,omitempty"`
}

// Param represents a POST parameter.
type Param struct {
	Name        string `json:"name"`
	Value       string `json:"value,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// Content represents response content.
type Content struct {
	Size        int    `json:"size,omitempty"`
	Compression int    `json:"compression,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	Text        string `json:"text"`
	Encoding    string `json:"encoding,omitempty"`
}

// EncodingBase64 is the only content encoding HAR defines.
const EncodingBase64 = "base64"

// Timings represents timing information.
type Timings struct {
	Blocked float64 `json:"blocked,omitempty"`
	DNS     float64 `json:"dns,omitempty"`
	Connect float64 `json:"connect,omitempty"`
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
	SSL     float64 `json:"ssl,omitempty"`
}
