package utils

import (
	"fmt"

	"github.com/critiq-dev/critiq/internal/policy"
	"github.com/critiq-dev/critiq/internal/types"
	"github.com/gin-gonic/gin"
)

// CurrentActor returns the actor set by the auth middleware. Routes behind
// OptionalAuth get the anonymous actor when no token was presented.
func CurrentActor(ctx *gin.Context) policy.Actor {
	value, exists := ctx.Get(types.ContextActorKey)

	if !exists {
		return policy.Actor{}
	}

	actor, ok := value.(policy.Actor)

	if !ok {
		return policy.Actor{}
	}

	return actor
}

// RequireActor returns the authenticated actor or an error for anonymous
// requests.
func RequireActor(ctx *gin.Context) (policy.Actor, error) {
	actor := CurrentActor(ctx)

	if !actor.Authenticated {
		return policy.Actor{}, fmt.Errorf("user not authenticated")
	}

	return actor, nil
}
