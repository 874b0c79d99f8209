package workspace

import "syno/internal/service"

// QueueSize reports how many mutations hold or wait for id on c.
func QueueSize[T any, C, P Validator](c *Controller[T, C, P], id service.ID) int {
	return c.queue.size(id)
}
