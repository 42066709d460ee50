// Package httpx provides the JSON request/response plumbing shared by
// all route handlers: a response envelope, error rendering, and a
// wrapper that adapts RequestHandler functions to http.HandlerFunc.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
)

func GetRequestData(r *http.Request, data any) error {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return ErrReqMethodNotSupported()
	}
	if r.Body == nil {
		log.Ctx(r.Context()).Error().Msg("empty request body")
		return ErrUnableToParseReqData()
	}
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		return ErrUnableToParseReqData()
	}
	return nil
}

type Response struct {
	StatusCode  int
	Location    string // set for http.StatusCreated / http.StatusAccepted
	Response    any
	ContentType string
}

type RequestHandler func(r *http.Request) (*Response, error)

// ResponseHandlerParam binds one route to a RequestHandler.
type ResponseHandlerParam struct {
	Method  string
	Path    string
	Handler RequestHandler
}

// WrapHttpRsp adapts a RequestHandler to http.HandlerFunc, rendering
// apperrors status codes and the JSON envelope uniformly.
func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			if httperror, ok := err.(*Error); ok {
				httperror.Send(w)
			} else if appErr, ok := err.(apperrors.Error); ok {
				SendError(w, appErr)
			} else {
				ErrApplicationError(err.Error()).Send(w)
			}
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}
		if rsp.ContentType == "" {
			rsp.ContentType = "application/json"
		}
		if rsp.ContentType != "application/json" {
			ErrApplicationError("unsupported response type").Send(w)
			return
		}
		SendJsonRsp(r.Context(), w, rsp.StatusCode, rsp.Response, rsp.Location)
	}
}

// SendJsonRsp writes a JSON response with the given status code. An
// empty body is allowed for 204-style responses.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, rsp any, location ...string) {
	w.Header().Set("Content-Type", "application/json")
	if len(location) > 0 && location[0] != "" {
		w.Header().Set("Location", location[0])
	}
	w.WriteHeader(statusCode)
	if rsp == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to encode response")
	}
}
