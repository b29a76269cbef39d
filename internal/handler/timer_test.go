package handler

import (
	"net/http"
	"testing"

	"github.com/readingroom/backend/internal/model"
	"github.com/readingroom/backend/internal/service"
	"github.com/readingroom/backend/internal/service/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.chat.reply = "토론 분석"

	w := env.do(t, http.MethodPost, "/api/timers", map[string]interface{}{
		"durationSeconds": 120,
		"character":       model.Character{Name: "민수", SpecialEffect: model.EffectExtraMinute},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := decode[service.TimerSession](t, w)
	assert.Equal(t, 180, session.DurationSeconds)
	base := "/api/timers/" + session.ID

	// 开始前不接受发言
	w = env.do(t, http.MethodPost, base+"/transcript", map[string]string{"text": "너무 이른 발언"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, base+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, base+"/start", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, base+"/transcript", map[string]string{"text": "고객 가치가 중요합니다."})
	require.Equal(t, http.StatusOK, w.Code)

	env.clock.fireAll()

	w = env.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	session = decode[service.TimerSession](t, w)
	assert.Equal(t, statemachine.TimerStateFinished, session.State)
	assert.Equal(t, "토론 분석", session.Analysis)
	assert.Equal(t, "민수님의 시간이 종료되었습니다.", session.Notice)

	w = env.do(t, http.MethodPost, base+"/transcript", map[string]string{"text": "늦은 발언"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "발언 시간이 종료되어 내용을 추가할 수 없습니다.", decode[map[string]string](t, w)["error"])

	w = env.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimerCreateRejectsInvalidDuration(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/timers", map[string]int{"durationSeconds": 0})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.MsgInvalidDuration, decode[map[string]string](t, w)["error"])
}
