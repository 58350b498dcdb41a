// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package vertexai

// PartKind discriminates the variants of Part.
type PartKind int

const (
	// PartString is a plain string element of a list input.
	PartString PartKind = iota
	// PartText is a multimodal part carrying text.
	PartText
	// PartMIMEType is a multimodal part that only declares a MIME type.
	PartMIMEType
	// PartInlineData is a multimodal part carrying raw bytes.
	PartInlineData
	// PartFileData is a multimodal part referencing a file by URI.
	PartFileData
)

// Part is one element of a list input.
type Part struct {
	Kind     PartKind
	Text     string
	MIMEType string
	Data     []byte
	FileURI  string
}

// StringPart returns a PartString.
func StringPart(s string) Part { return Part{Kind: PartString, Text: s} }

// TextPart returns a PartText.
func TextPart(text string) Part { return Part{Kind: PartText, Text: text} }

// MIMETypePart returns a PartMIMEType.
func MIMETypePart(mimeType string) Part { return Part{Kind: PartMIMEType, MIMEType: mimeType} }

// InlineDataPart returns a PartInlineData.
func InlineDataPart(data []byte, mimeType string) Part {
	return Part{Kind: PartInlineData, Data: data, MIMEType: mimeType}
}

// FileDataPart returns a PartFileData.
func FileDataPart(fileURI, mimeType string) Part {
	return Part{Kind: PartFileData, FileURI: fileURI, MIMEType: mimeType}
}

// Input is one positional argument of an intercepted call: either a single
// string or a list of parts.
type Input struct {
	isList bool
	text   string
	parts  []Part
}

// TextInput returns a string Input.
func TextInput(s string) Input { return Input{text: s} }

// ListInput returns a list Input.
func ListInput(parts ...Part) Input { return Input{isList: true, parts: parts} }

// Params are the sampling parameters of an intercepted call. Nil means the
// parameter was not given.
type Params struct {
	// Model is recorded as llm.request.model when non-empty.
	Model            string
	Temperature      *float64
	MaxOutputTokens  *int64
	TopP             *float64
	PresencePenalty  *float64
	FrequencyPenalty *float64
}

// Request is the view of an intercepted call's arguments that the request
// attributes are extracted from.
type Request struct {
	Inputs []Input
	Params Params
}

// ResponseKind discriminates the variants of Response.
type ResponseKind int

const (
	// ResponseText is a response object exposing a single text.
	ResponseText ResponseKind = iota
	// ResponseTextList is a response object exposing one text per candidate.
	ResponseTextList
	// ResponseList is a bare list of strings.
	ResponseList
	// ResponseString is a bare string, such as the accumulated text of a stream.
	ResponseString
)

// Usage is the token accounting of a response.
type Usage struct {
	Total      int64
	Completion int64
	Prompt     int64
}

// Response is the view of a call result that response attributes are
// extracted from.
type Response struct {
	Kind   ResponseKind
	Values []string
	// Usage is nil when the response carries no token counts.
	Usage *Usage
}

// TextResponse returns a ResponseText.
func TextResponse(text string, usage *Usage) *Response {
	return &Response{Kind: ResponseText, Values: []string{text}, Usage: usage}
}

// TextListResponse returns a ResponseTextList.
func TextListResponse(texts []string, usage *Usage) *Response {
	return &Response{Kind: ResponseTextList, Values: texts, Usage: usage}
}

// ListResponse returns a ResponseList.
func ListResponse(items []string) *Response {
	return &Response{Kind: ResponseList, Values: items}
}

// StringResponse returns a ResponseString.
func StringResponse(s string) *Response {
	return &Response{Kind: ResponseString, Values: []string{s}}
}
