package model

type EventBody struct {
	Offset Offset `json:"offset"`
	Value  string `json:"value"`
}

type AnalyzeRequestBody struct {
	Parts [][]EventBody `json:"parts"`
	Steps []Step        `json:"steps"`
}

type ColumnBody struct {
	Indexer string      `json:"indexer"`
	Part    string      `json:"part"`
	Events  []EventBody `json:"events"`
}

type AnalyzeResponse struct {
	Id      string       `json:"id"`
	Columns []ColumnBody `json:"columns"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

type FrequencyRequestBody struct {
	Pieces [][][]EventBody `json:"pieces"`
	Steps  []Step          `json:"steps"`
}
