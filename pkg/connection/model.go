package connection

import "net/http"

func NewGet(rawURL string, params map[string][]string) *Request {
	return &Request{Method: http.MethodGet, URL: rawURL, Params: params}
}

func NewDelete(rawURL string, params map[string][]string) *Request {
	return &Request{Method: http.MethodDelete, URL: rawURL, Params: params}
}

func NewPost(rawURL string, body []byte, contentType string, params map[string][]string) *Request {
	return &Request{Method: http.MethodPost, URL: rawURL, Body: body, ContentType: contentType, Params: params}
}

func NewPut(rawURL string, body []byte, contentType string, params map[string][]string) *Request {
	return &Request{Method: http.MethodPut, URL: rawURL, Body: body, ContentType: contentType, Params: params}
}
