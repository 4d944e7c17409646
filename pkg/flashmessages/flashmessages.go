// Package flashmessages implements one-shot session messages for the
// redirect-after-post flows in the dashboard.
package flashmessages

import (
	"encoding/json"

	"kiliheights.com/configs/configssession"

	"github.com/gofiber/fiber/v2"
)

const (
	FlashSuccessKey  = "flash_success"
	FlashErrorKey    = "flash_error"
	flashFormDataKey = "flash_form_data"
)

// FlashData carries the messages popped from the session for one render.
type FlashData struct {
	Success string
	Error   string
}

// SetFlashMessage stores a one-shot message under key (FlashSuccessKey or
// FlashErrorKey).
func SetFlashMessage(c *fiber.Ctx, key, message string) error {
	sess, err := configssession.SetupSession().Get(c)
	if err != nil {
		return err
	}
	sess.Set(key, message)
	return sess.Save()
}

// GetFlashMessages pops and returns both message slots.
func GetFlashMessages(c *fiber.Ctx) (FlashData, error) {
	sess, err := configssession.SetupSession().Get(c)
	if err != nil {
		return FlashData{}, err
	}
	data := FlashData{}
	if v, ok := sess.Get(FlashSuccessKey).(string); ok {
		data.Success = v
		sess.Delete(FlashSuccessKey)
	}
	if v, ok := sess.Get(FlashErrorKey).(string); ok {
		data.Error = v
		sess.Delete(FlashErrorKey)
	}
	return data, sess.Save()
}

// SetFlashFormData keeps a failed form payload across the redirect so the
// form re-renders pre-filled.
func SetFlashFormData(c *fiber.Ctx, form any) error {
	raw, err := json.Marshal(form)
	if err != nil {
		return err
	}
	sess, err := configssession.SetupSession().Get(c)
	if err != nil {
		return err
	}
	sess.Set(flashFormDataKey, string(raw))
	return sess.Save()
}

// GetFlashFormData pops the stored form payload as a generic map, nil when
// absent or unreadable.
func GetFlashFormData(c *fiber.Ctx) map[string]any {
	sess, err := configssession.SetupSession().Get(c)
	if err != nil {
		return nil
	}
	raw, ok := sess.Get(flashFormDataKey).(string)
	if !ok {
		return nil
	}
	sess.Delete(flashFormDataKey)
	_ = sess.Save()

	var form map[string]any
	if err := json.Unmarshal([]byte(raw), &form); err != nil {
		return nil
	}
	return form
}
