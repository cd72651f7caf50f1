package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func (s *server) listMembers(c *fiber.Ctx) error {
	members, err := s.members.List(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	return c.JSON(out)
}

func (s *server) addMember(c *fiber.Ctx) error {
	var req addMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	member, err := s.members.Add(c.Context(), c.Params("id"), req.Name, req.Weight)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toMemberResponse(*member))
}

// updateMember treats omitted weight and activated fields as "keep the
// current value".
func (s *server) updateMember(c *fiber.Ctx) error {
	memberID, err := pathInt(c, "mid")
	if err != nil {
		return err
	}

	var req updateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	projectID := c.Params("id")
	current, err := s.members.Get(c.Context(), projectID, memberID)
	if err != nil {
		return err
	}

	weight := current.Weight
	if req.Weight != nil {
		weight = *req.Weight
	}
	activated := current.Activated
	if req.Activated != nil {
		activated = *req.Activated
	}
	name := req.Name
	if name == "" {
		name = current.Name
	}

	member, err := s.members.Update(c.Context(), projectID, memberID, name, weight, activated)
	if err != nil {
		return err
	}
	return c.JSON(toMemberResponse(*member))
}

func (s *server) removeMember(c *fiber.Ctx) error {
	memberID, err := pathInt(c, "mid")
	if err != nil {
		return err
	}

	projectID := c.Params("id")
	deleted, err := s.members.Remove(c.Context(), projectID, memberID)
	if err != nil {
		return err
	}

	resp := removeMemberResponse{Deleted: deleted}
	if !deleted {
		member, err := s.members.Get(c.Context(), projectID, memberID)
		if err != nil {
			return err
		}
		dto := toMemberResponse(*member)
		resp.Member = &dto
	}
	return c.JSON(resp)
}

// pathInt parses a numeric path parameter.
func pathInt(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
