package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	helper "github.com/openrlce/routelock/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type enforcementAPI struct {
	enforcementService EnforcementService
	log                *zap.Logger
}

func New(enforcementService EnforcementService, log *zap.Logger) *enforcementAPI {
	return &enforcementAPI{
		enforcementService: enforcementService,
		log:                log,
	}
}

func (api *enforcementAPI) Routes(group *helper.RouteGroup) {
	group.GET("/status", api.status)
	group.GET("/events", api.events)
	group.GET("/route", api.route)
	group.GET("/towers", api.towers)
	group.POST("/commands/toggleRogue", api.toggleRogue)
	group.POST("/commands/regenerate", api.regenerate)
	group.POST("/commands/reselect", api.reselect)
	group.POST("/commands/autopilot", api.autopilot)
	group.PATCH("/config", api.updateConfig)
}

func (api *enforcementAPI) status(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	snap := api.enforcementService.Status()

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewStatusResponse(snap)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *enforcementAPI) events(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": api.enforcementService.Events()}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *enforcementAPI) route(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	route := api.enforcementService.Route()

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewRouteResponse(route)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *enforcementAPI) towers(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	towers := api.enforcementService.Towers()

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTowersResponse(towers)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *enforcementAPI) toggleRogue(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request toggleRogueRequest
	if !api.decodeAndValidate(w, r, &request) {
		return
	}

	tower, err := api.enforcementService.ToggleRogue(*request.X, *request.Y)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTowerResponse(tower)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *enforcementAPI) regenerate(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	towers := api.enforcementService.Regenerate()

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": regenerateResponse{Towers: towers}}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *enforcementAPI) reselect(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	tower, err := api.enforcementService.Reselect()
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTowerResponse(tower)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *enforcementAPI) autopilot(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request autopilotRequest
	if !api.decodeAndValidate(w, r, &request) {
		return
	}

	api.enforcementService.SetAutopilot(*request.Enabled)

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": map[string]bool{"enabled": *request.Enabled}}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *enforcementAPI) updateConfig(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request updateConfigRequest
	if !api.decodeAndValidate(w, r, &request) {
		return
	}

	snap := api.enforcementService.ApplyConfig(request.Grace, request.Hysteresis, request.PollMS)

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewStatusResponse(snap)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// decodeAndValidate decodes the JSON body into request and runs the validator
// over it, writing the error response itself when either step fails.
func (api *enforcementAPI) decodeAndValidate(w http.ResponseWriter, r *http.Request, request interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return false
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return false
	}

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return false
	}
	return true
}
