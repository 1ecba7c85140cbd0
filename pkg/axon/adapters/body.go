package adapters

import (
	"bytes"
	"io"
	"net/http"

	"github.com/toyz/receitas/pkg/axon"
)

// bufferedBody is a request body read once and shared by every later Body call
type bufferedBody struct {
	data []byte
	err  error
}

// readRequestBody reads req.Body up to limit and leaves the bytes read in place of it
func readRequestBody(req *http.Request, limit int64) bufferedBody {
	if req.Body == nil {
		return bufferedBody{data: []byte{}}
	}
	data, err := axon.ReadBody(req.Body, limit)
	if data == nil {
		data = []byte{}
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	return bufferedBody{data: data, err: err}
}
