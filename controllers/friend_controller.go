package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vibblo-api/models"
	"vibblo-api/services"
	"vibblo-api/utils"
)

type FriendController struct {
	friendService *services.FriendService
}

func NewFriendController(friendService *services.FriendService) *FriendController {
	return &FriendController{friendService: friendService}
}

func (fc *FriendController) SendFriendRequest(c *gin.Context) {
	senderID := c.GetString("user_id")
	receiverID := c.Param("user_id")

	request, err := fc.friendService.SendFriendRequest(senderID, receiverID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendCreated(c, "Friend request sent successfully", request)
}

func (fc *FriendController) AcceptFriendRequest(c *gin.Context) {
	userID := c.GetString("user_id")

	requestID, ok := parseRequestID(c)
	if !ok {
		return
	}

	if err := fc.friendService.AcceptFriendRequest(userID, requestID); err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendSuccess(c, "Friend request accepted successfully", nil)
}

func (fc *FriendController) RejectFriendRequest(c *gin.Context) {
	userID := c.GetString("user_id")

	requestID, ok := parseRequestID(c)
	if !ok {
		return
	}

	if err := fc.friendService.RejectFriendRequest(userID, requestID); err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendSuccess(c, "Friend request rejected successfully", nil)
}

func (fc *FriendController) CancelSentRequest(c *gin.Context) {
	userID := c.GetString("user_id")

	requestID, ok := parseRequestID(c)
	if !ok {
		return
	}

	if err := fc.friendService.CancelSentRequest(userID, requestID); err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendSuccess(c, "Friend request cancelled successfully", nil)
}

func (fc *FriendController) Unfriend(c *gin.Context) {
	userID := c.GetString("user_id")
	friendID := c.Param("user_id")

	if err := fc.friendService.Unfriend(userID, friendID); err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendSuccess(c, "Friend removed successfully", nil)
}

func (fc *FriendController) GetFriends(c *gin.Context) {
	userID := c.GetString("user_id")

	friends, err := fc.friendService.GetFriends(userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	profiles := make([]models.UserProfile, 0, len(friends))
	for i := range friends {
		profiles = append(profiles, friends[i].ToProfile())
	}

	c.JSON(http.StatusOK, gin.H{"friends": profiles})
}

func (fc *FriendController) GetSentRequests(c *gin.Context) {
	userID := c.GetString("user_id")

	requests, err := fc.friendService.GetSentRequests(userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	responses := make([]models.FriendRequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, requests[i].ToSentResponse())
	}

	c.JSON(http.StatusOK, gin.H{"requests": responses})
}

func (fc *FriendController) GetReceivedRequests(c *gin.Context) {
	userID := c.GetString("user_id")

	requests, err := fc.friendService.GetReceivedRequests(userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	responses := make([]models.FriendRequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, requests[i].ToReceivedResponse())
	}

	c.JSON(http.StatusOK, gin.H{"requests": responses})
}

func parseRequestID(c *gin.Context) (uint, bool) {
	requestID, err := strconv.ParseUint(c.Param("request_id"), 10, 32)
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request ID")
		return 0, false
	}
	return uint(requestID), true
}
