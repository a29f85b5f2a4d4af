package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/restroom/internal/ingest"
	"github.com/mesh-intelligence/restroom/pkg/types"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type textBody struct {
	Text string `json:"text"`
}

type voteBody struct {
	VoteType string `json:"vote_type"`
}

func (h *Handler) SignUp(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.app.Auth.SignUp(c.Request.Context(), session(c), req.Username, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	if err := saveSession(c); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"username": req.Username})
}

func (h *Handler) LogIn(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.app.Auth.LogIn(c.Request.Context(), session(c), req.Username, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	if err := saveSession(c); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": req.Username})
}

func (h *Handler) LogOut(c *gin.Context) {
	h.app.Auth.LogOut(session(c))
	if err := saveSession(c); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	name, ok := session(c).User()
	if !ok {
		h.fail(c, types.ErrNotAuthenticated)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": name})
}

func (h *Handler) IngestPlaces(c *gin.Context) {
	places, err := ingest.DecodePlaces(c.Request.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	client, err := clientID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	rep, err := h.app.Ingest.Ingest(c.Request.Context(), client, places)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handler) ListFacilities(c *gin.Context) {
	list, err := h.app.Store.Facilities(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []*types.Facility{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetFacility(c *gin.Context) {
	ctx := c.Request.Context()
	f, err := h.app.Store.GetFacility(ctx, c.Param("placeID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	top, _, err := h.app.Content.TopCode(ctx, f.PlaceID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"facility": f, "top_code": top})
}

func (h *Handler) ListComments(c *gin.Context) {
	list, err := h.app.Content.ListComments(c.Request.Context(), c.Param("placeID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []*types.Comment{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) AddComment(c *gin.Context) {
	var req textBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	comment, err := h.app.Content.AddComment(c.Request.Context(), session(c), c.Param("placeID"), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) ListCodes(c *gin.Context) {
	ranked, err := h.app.Content.RankedCodes(c.Request.Context(), c.Param("placeID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if ranked == nil {
		ranked = []types.RankedCode{}
	}
	c.JSON(http.StatusOK, ranked)
}

func (h *Handler) AddCode(c *gin.Context) {
	var req textBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	code, err := h.app.Content.AddCode(c.Request.Context(), session(c), c.Param("placeID"), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, code)
}

func (h *Handler) CastVote(c *gin.Context) {
	var req voteBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	// Authentication is reported before vote type validation.
	sess := session(c)
	if _, ok := sess.User(); !ok {
		h.fail(c, types.ErrNotAuthenticated)
		return
	}
	vt, err := types.ParseVoteType(req.VoteType)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.app.Votes.CastVote(c.Request.Context(), sess, c.Param("codeID"), vt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetNote(c *gin.Context) {
	note, err := h.app.Content.GetNote(c.Request.Context(), session(c), c.Param("placeID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *Handler) SetNote(c *gin.Context) {
	var req textBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	note, err := h.app.Content.SetNote(c.Request.Context(), session(c), c.Param("placeID"), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *Handler) Nearest(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		badRequest(c, "lat and lon query parameters are required")
		return
	}
	res, ok, err := h.app.NearestWithTopCode(c.Request.Context(), types.Coordinate{Latitude: lat, Longitude: lon})
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no facilities"})
		return
	}
	c.JSON(http.StatusOK, res)
}
