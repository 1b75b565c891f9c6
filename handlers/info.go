package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/amritsagoo91/phonebook-demo/phonebook"
)

// infoTimeLayout renders dates like "Sat Oct 17 2026 10:04:05 GMT+0300 (EEST)".
const infoTimeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

type Info struct {
	Service      *phonebook.Service
	ErrorHandler func(context.Context, error)
}

func (h *Info) RegisterAPI(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/info",
		handlerWithErrorHandler(h.handle, h.ErrorHandler),
		opErrors(http.StatusInternalServerError),
		func(o *huma.Operation) { o.Summary = "Phonebook summary page" },
	)
}

type InfoOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func (h *Info) handle(ctx context.Context, _ *struct{}) (*InfoOutput, error) {
	summary, err := h.Service.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return &InfoOutput{
		ContentType: "text/html; charset=utf-8",
		Body: fmt.Appendf(nil, "<p>Phonebook has info for %d people</p>\n<p>%s</p>\n",
			summary.Count, summary.Time.Format(infoTimeLayout)),
	}, nil
}
