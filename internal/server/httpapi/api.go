package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/logging"
	"github.com/sterilpoint/protokol/internal/models"
	"github.com/sterilpoint/protokol/internal/server/services"
)

// API wires the protocol services into a fiber application.
type API struct {
	protocols *services.ProtocolService
	exports   *services.ExportService
	users     *services.UserService
	log       logging.Logger
}

func New(protocols *services.ProtocolService, exports *services.ExportService, users *services.UserService, log logging.Logger) *API {
	return &API{protocols: protocols, exports: exports, users: users, log: log.With("module", "httpapi")}
}

// Router builds the fiber app with all routes registered. Everything under
// /api except login requires a bearer token.
func (a *API) Router() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	api := app.Group("/api")
	api.Post("/login", a.login)

	authed := api.Group("", a.requireAuth)
	authed.Get("/protocols", a.listProtocols)
	authed.Get("/protocols/:clientId/:month", a.getLedger)
	authed.Post("/protocols/:clientId/:month", a.createEntry)
	authed.Patch("/protocols/:clientId/:month/:index", a.patchEntry)
	authed.Delete("/protocols/:clientId/:month/:index", a.deleteEntry)
	authed.Post("/protocols/:clientId/:month/:index/queue", a.setQueue)
	authed.Post("/protocols/:clientId/:month/:index/sign", a.sign)
	authed.Delete("/protocols/:clientId/:month/:index/sign", a.deleteSignature)
	authed.Get("/sign-queue", a.signQueue)
	authed.Get("/clients", a.listClients)
	authed.Get("/tools", a.listToolNames)
	authed.Post("/exports", a.createExport)
	authed.Get("/exports", a.listExports)
	authed.Get("/exports/:id/url", a.exportURL)

	return app
}

// fail translates service errors into HTTP statuses. Unexpected errors are
// logged with their cause and reported without it.
func (a *API) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return BadRequest(c, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return NotFound(c, err.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return Unauthorized(c, "unauthorized")
	case errors.Is(err, common.ErrAlreadyFinalized):
		return Conflict(c, err.Error())
	default:
		a.log.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
		return InternalServerError(c, "internal error")
	}
}

func (a *API) requireAuth(c *fiber.Ctx) error {
	header := c.Get(common.AccessTokenHeaderName)
	if !strings.HasPrefix(header, "Bearer ") {
		return Unauthorized(c, "missing access token")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return Unauthorized(c, "missing access token")
	}
	userID, err := a.users.VerifyToken(token)
	if err != nil {
		return Unauthorized(c, "invalid access token")
	}
	c.Locals("userID", userID)
	return c.Next()
}

func entryIndex(c *fiber.Ctx) (int, error) {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 0 {
		return 0, errors.New("index must be a non-negative integer")
	}
	return index, nil
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (a *API) login(c *fiber.Ctx) error {
	var payload loginPayload
	if err := c.BodyParser(&payload); err != nil {
		return BadRequest(c, "malformed request body")
	}
	token, err := a.users.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, tokenResponse{Token: token})
}

func (a *API) listProtocols(c *fiber.Ctx) error {
	summaries, err := a.protocols.ListProtocols(c.UserContext())
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, summaries)
}

func (a *API) getLedger(c *fiber.Ctx) error {
	ledger, err := a.protocols.GetLedger(c.UserContext(), c.Params("clientId"), c.Params("month"))
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, ledger)
}

type createEntryResponse struct {
	Index    int              `json:"index"`
	Protocol *models.Protocol `json:"protocol"`
}

func (a *API) createEntry(c *fiber.Ctx) error {
	var entry models.Entry
	if err := c.BodyParser(&entry); err != nil {
		return BadRequest(c, "malformed request body")
	}
	index, ledger, err := a.protocols.CreateEntry(c.UserContext(), c.Params("clientId"), c.Params("month"), &entry)
	if err != nil {
		return a.fail(c, err)
	}
	return Created(c, createEntryResponse{Index: index, Protocol: ledger})
}

type entryResponse struct {
	Entry    *models.Entry    `json:"entry"`
	Protocol *models.Protocol `json:"protocol,omitempty"`
}

func (a *API) patchEntry(c *fiber.Ctx) error {
	index, err := entryIndex(c)
	if err != nil {
		return BadRequest(c, err.Error())
	}
	var patch models.EntryPatch
	if err := c.BodyParser(&patch); err != nil {
		return BadRequest(c, "malformed request body")
	}
	entry, ledger, err := a.protocols.PatchEntry(c.UserContext(), c.Params("clientId"), c.Params("month"), index, patch)
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, entryResponse{Entry: entry, Protocol: ledger})
}

func (a *API) deleteEntry(c *fiber.Ctx) error {
	index, err := entryIndex(c)
	if err != nil {
		return BadRequest(c, err.Error())
	}
	ledger, err := a.protocols.DeleteEntry(c.UserContext(), c.Params("clientId"), c.Params("month"), index)
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, ledger)
}

type queuePayload struct {
	Type        models.QueueType `json:"type"`
	Pending     bool             `json:"pending"`
	PlannedDate string           `json:"plannedDate,omitempty"`
}

func (a *API) setQueue(c *fiber.Ctx) error {
	index, err := entryIndex(c)
	if err != nil {
		return BadRequest(c, err.Error())
	}
	var payload queuePayload
	if err := c.BodyParser(&payload); err != nil {
		return BadRequest(c, "malformed request body")
	}
	entry, err := a.protocols.SetQueue(c.UserContext(), c.Params("clientId"), c.Params("month"), index,
		payload.Type, payload.Pending, payload.PlannedDate)
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, entryResponse{Entry: entry})
}

// signPayload carries signature images as base64 PNG bytes.
type signPayload struct {
	Leg             models.Leg `json:"leg"`
	Client          []byte     `json:"client,omitempty"`
	Staff           []byte     `json:"staff,omitempty"`
	UseDefaultStaff bool       `json:"useDefaultStaff,omitempty"`
}

func (a *API) sign(c *fiber.Ctx) error {
	index, err := entryIndex(c)
	if err != nil {
		return BadRequest(c, err.Error())
	}
	var payload signPayload
	if err := c.BodyParser(&payload); err != nil {
		return BadRequest(c, "malformed request body")
	}
	entry, err := a.protocols.Sign(c.UserContext(), c.Params("clientId"), c.Params("month"), index, services.SignRequest{
		Leg:             payload.Leg,
		Client:          payload.Client,
		Staff:           payload.Staff,
		UseDefaultStaff: payload.UseDefaultStaff,
	})
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, entryResponse{Entry: entry})
}

type deleteSignaturePayload struct {
	Leg models.Leg   `json:"leg"`
	Who models.Party `json:"who"`
}

func (a *API) deleteSignature(c *fiber.Ctx) error {
	index, err := entryIndex(c)
	if err != nil {
		return BadRequest(c, err.Error())
	}
	var payload deleteSignaturePayload
	if err := c.BodyParser(&payload); err != nil {
		return BadRequest(c, "malformed request body")
	}
	entry, err := a.protocols.DeleteSignature(c.UserContext(), c.Params("clientId"), c.Params("month"), index,
		payload.Leg, payload.Who)
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, entryResponse{Entry: entry})
}

func (a *API) signQueue(c *fiber.Ctx) error {
	items, err := a.protocols.SignQueue(c.UserContext(), models.QueueType(c.Query("type")), c.Query("month"))
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, items)
}

func (a *API) listClients(c *fiber.Ctx) error {
	list, err := a.protocols.ListClients(c.UserContext())
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, list)
}

func (a *API) listToolNames(c *fiber.Ctx) error {
	names, err := a.protocols.ListToolNames(c.UserContext())
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, names)
}

func (a *API) createExport(c *fiber.Ctx) error {
	var snap models.ExportSnapshot
	if err := c.BodyParser(&snap); err != nil {
		return BadRequest(c, "malformed request body")
	}
	rec, err := a.exports.Create(c.UserContext(), &snap)
	if err != nil {
		return a.fail(c, err)
	}
	return Created(c, rec)
}

func (a *API) listExports(c *fiber.Ctx) error {
	list, err := a.exports.List(c.UserContext(), c.Query("month"))
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, list)
}

type exportURLResponse struct {
	URL string `json:"url"`
}

func (a *API) exportURL(c *fiber.Ctx) error {
	url, err := a.exports.DownloadURL(c.UserContext(), c.Params("id"))
	if err != nil {
		return a.fail(c, err)
	}
	return OK(c, exportURLResponse{URL: url})
}
