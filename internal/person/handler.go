package person

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/juju/errors"
)

type Handler struct {
	service *Service
}

type personRequest struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Gender    string `json:"gender"`
}

func (r personRequest) toPerson() Person {
	return Person{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Address:   r.Address,
		Gender:    r.Gender,
	}
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/person")
	group.Get("/", h.findAll)
	group.Post("/", h.create)
	// the id may come from the body (PUT /person) or from the path
	group.Put("/", h.update)
	// registered ahead of /:id so "search" is not read as an id
	group.Get("/search", h.findByName)
	group.Get("/:id", h.findByID)
	group.Put("/:id", h.update)
	group.Delete("/:id", h.delete)
}

// findAll godoc
// @Summary  List every person
// @Tags     person
// @Produce  json
// @Success  200  {array}   Person
// @Failure  500  {object}  map[string]string
// @Router   /person [get]
func (h *Handler) findAll(c *fiber.Ctx) error {
	people, err := h.service.FindAll(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(people)
}

// findByID godoc
// @Summary  Find a person by id
// @Tags     person
// @Produce  json
// @Param    id   path      int  true  "Person id"
// @Success  200  {object}  Person
// @Failure  400  {object}  map[string]string
// @Failure  404  {object}  map[string]string
// @Router   /person/{id} [get]
func (h *Handler) findByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid person id"})
	}

	p, err := h.service.FindByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

// findByName godoc
// @Summary  Find a person by first and last name
// @Tags     person
// @Produce  json
// @Param    firstName  query     string  true  "First name"
// @Param    lastName   query     string  true  "Last name"
// @Success  200        {object}  Person
// @Failure  400        {object}  map[string]string
// @Failure  404        {object}  map[string]string
// @Router   /person/search [get]
func (h *Handler) findByName(c *fiber.Ctx) error {
	firstName := strings.TrimSpace(c.Query("firstName"))
	lastName := strings.TrimSpace(c.Query("lastName"))
	if firstName == "" || lastName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "firstName and lastName are required"})
	}

	p, err := h.service.FindByName(c.UserContext(), firstName, lastName)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

// create godoc
// @Summary  Create a person
// @Tags     person
// @Accept   json
// @Produce  json
// @Param    person  body      personRequest  true  "Person to create, id is ignored"
// @Success  200     {object}  Person
// @Failure  400     {object}  map[string]string
// @Failure  409     {object}  map[string]string
// @Router   /person [post]
func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(personRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	candidate := payload.toPerson()
	if candidate.IsMissingRequiredFields() {
		return writeError(c, ErrMissingFields)
	}

	created, err := h.service.Create(c.UserContext(), candidate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(created)
}

// update godoc
// @Summary  Replace a person
// @Description  The id is taken from the path when present, otherwise from the body.
// @Tags     person
// @Accept   json
// @Produce  json
// @Param    id      path      int            true  "Person id"
// @Param    person  body      personRequest  true  "New attributes"
// @Success  200     {object}  Person
// @Failure  400     {object}  map[string]string
// @Failure  404     {object}  map[string]string
// @Failure  409     {object}  map[string]string
// @Router   /person/{id} [put]
// @Router   /person [put]
func (h *Handler) update(c *fiber.Ctx) error {
	payload := new(personRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if c.Params("id") != "" {
		id, err := parseID(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid person id"})
		}
		payload.ID = id
	}

	candidate := payload.toPerson()
	if candidate.IsMissingRequiredFields() {
		return writeError(c, ErrMissingFields)
	}

	updated, err := h.service.Update(c.UserContext(), candidate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

// delete godoc
// @Summary  Delete a person
// @Tags     person
// @Param    id   path  int  true  "Person id"
// @Success  204
// @Failure  400  {object}  map[string]string
// @Failure  404  {object}  map[string]string
// @Router   /person/{id} [delete]
func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid person id"})
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// writeError maps service errors onto HTTP statuses. Anything unknown is a
// server error and its detail is not echoed back.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Person not found"})
	case errors.Is(err, ErrEmailExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already exists"})
	case errors.Is(err, ErrMissingFields):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing required fields"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}
}
