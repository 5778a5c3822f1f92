package server

// Status is the outcome carried by every JSON body.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Response is the body of health checks and errors.
type Response struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// PartitionsResponse lists the partitions opened by the server.
type PartitionsResponse struct {
	Engine     string   `json:"engine"`
	Partitions []string `json:"partitions"`
}

// Entry is one rendered key/value pair.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EntriesResponse is one page of a partition scan. Next is the hex form of
// the first key not returned and can be passed back as from.
type EntriesResponse struct {
	Partition string  `json:"partition"`
	Format    string  `json:"format"`
	Entries   []Entry `json:"entries"`
	Next      string  `json:"next,omitempty"`
}

// PropertyResponse carries one store property.
type PropertyResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func newOKResponse() Response {
	return Response{Status: StatusOK}
}

func newErrorResponse(err string) Response {
	return Response{Status: StatusError, Error: err}
}
