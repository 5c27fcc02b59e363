package common

import "fmt"

func RedisKeyContestDraw(contestID string) string {
	return fmt.Sprintf("contestdraw:%s", contestID)
}
