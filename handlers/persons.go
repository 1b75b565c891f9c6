package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/amritsagoo91/phonebook-demo/datastores"
	"github.com/amritsagoo91/phonebook-demo/phonebook"
)

type Persons struct {
	Service      *phonebook.Service
	ErrorHandler func(context.Context, error)
}

type PersonModel struct {
	ID     ds.ContactID `json:"id"     readOnly:"true" example:"1"`
	Name   string       `json:"name"                   example:"Ada Lovelace"`
	Number string       `json:"number"                 example:"39-44-5323523"`
}

func personModel(c *ds.Contact) PersonModel {
	return PersonModel{ID: c.ID, Name: c.Name, Number: c.Number}
}

// PersonInput is the body of create and replace requests. Both fields are
// optional in the schema so that missing values reach the service and get
// the same answer as any other invalid value.
type PersonInput struct {
	_ struct{} `json:"-" additionalProperties:"true"`

	Name   string `json:"name,omitempty"   example:"Ada Lovelace"  doc:"At least 3 characters, unique ignoring case"`
	Number string `json:"number,omitempty" example:"39-44-5323523" doc:"2 or 3 digits, a hyphen, then digits"`
}

func (h *Persons) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/persons",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opErrors(http.StatusInternalServerError),
	)
}

type PersonsListOutput struct {
	Body []PersonModel
}

func (h *Persons) list(ctx context.Context, _ *struct{}) (*PersonsListOutput, error) {
	contacts, err := h.Service.List(ctx)
	if err != nil {
		return nil, err
	}

	body := make([]PersonModel, 0, len(contacts))
	for _, contact := range contacts {
		body = append(body, personModel(contact))
	}

	return &PersonsListOutput{Body: body}, nil
}

type PersonOutput struct {
	Body PersonModel
}

func (h *Persons) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/persons/{id}",
		handlerWithErrorHandler(h.get, h.ErrorHandler),
		opErrors(http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError),
	)
}

func (h *Persons) get(ctx context.Context, input *struct {
	ID ds.ContactID `path:"id" doc:"ID of the contact to get"`
}) (*PersonOutput, error) {
	contact, err := h.Service.Get(ctx, input.ID)
	if err != nil {
		return nil, serviceError(err)
	}
	return &PersonOutput{Body: personModel(contact)}, nil
}

func (h *Persons) RegisterPost(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/persons",
		handlerWithErrorHandler(h.post, h.ErrorHandler),
		opStatus(http.StatusCreated),
		opErrors(http.StatusBadRequest, http.StatusConflict, http.StatusInternalServerError),
	)
}

func (h *Persons) post(ctx context.Context, input *struct {
	Body PersonInput
}) (*PersonOutput, error) {
	contact, err := h.Service.Create(ctx, input.Body.Name, input.Body.Number)
	if err != nil {
		return nil, serviceError(err)
	}
	return &PersonOutput{Body: personModel(contact)}, nil
}

func (h *Persons) RegisterPut(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/persons/{id}",
		handlerWithErrorHandler(h.put, h.ErrorHandler),
		opErrors(http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError),
	)
}

func (h *Persons) put(ctx context.Context, input *struct {
	ID   ds.ContactID `path:"id" doc:"ID of the contact to replace"`
	Body PersonInput
}) (*PersonOutput, error) {
	contact, err := h.Service.Update(ctx, input.ID, input.Body.Name, input.Body.Number)
	if err != nil {
		return nil, serviceError(err)
	}
	return &PersonOutput{Body: personModel(contact)}, nil
}

func (h *Persons) RegisterDel(api huma.API) { // called by [huma.AutoRegister]
	huma.Delete(api, "/persons/{id}",
		handlerWithErrorHandler(h.del, h.ErrorHandler),
		opStatus(http.StatusNoContent),
		opErrors(http.StatusInternalServerError),
	)
}

func (h *Persons) del(ctx context.Context, input *struct {
	ID ds.ContactID `path:"id" doc:"ID of the contact to delete"`
}) (*struct{}, error) {
	return nil, h.Service.Delete(ctx, input.ID)
}
