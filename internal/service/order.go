package service

import (
	"context"
	"encoding/json"
	"math/rand"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/readingroom/backend/internal/model"
	"github.com/readingroom/backend/internal/utils"
	"k8s.io/klog/v2"
)

// 角色来源
const (
	OrderSourceAI       = "ai"
	OrderSourceFallback = "fallback"
)

// Participants 接受逗号分隔的字符串或字符串数组
type Participants []string

func (p *Participants) UnmarshalJSON(data []byte) error {
	var raw []string
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		raw = strings.Split(single, ",")
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	names := make([]string, 0, len(raw))
	for _, name := range raw {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	*p = names
	return nil
}

type OrderRequest struct {
	Participants Participants `json:"participants"`
}

type OrderResponse struct {
	Characters []model.Character `json:"characters"`
	Suggestion string            `json:"suggestion"`
	Source     string            `json:"source"`
}

type aiOrder struct {
	Characters []struct {
		Name          string `json:"name"`
		Role          string `json:"role"`
		Ability       string `json:"ability"`
		SpecialEffect string `json:"specialEffect"`
	} `json:"characters"`
	Suggestion string `json:"suggestion"`
}

type OrderService struct {
	chat ChatCompleter
}

func NewOrderService(chat ChatCompleter) *OrderService {
	return &OrderService{chat: chat}
}

// PickOrder 让模型分配发言顺序和角色，结果不可用时随机分配
func (s *OrderService) PickOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	if req == nil || len(req.Participants) == 0 {
		return nil, invalid("participants", MsgMissingParticipant)
	}
	names := []string(req.Participants)

	text, err := s.chat.Complete(ctx, buildOrderPrompt(names))
	if err != nil {
		klog.Warningf("[Order] 模型分配失败，改为随机分配: %v", err)
		return fallbackOrder(names), nil
	}

	resp, ok := parseAIOrder(text, names)
	if !ok {
		klog.Warningf("[Order] 模型结果与参与者不一致，改为随机分配")
		return fallbackOrder(names), nil
	}
	klog.V(6).Infof("[Order] 模型分配完成: %s", utils.ToJSON(resp.Characters))
	return resp, nil
}

// parseAIOrder 只接受恰好包含全部参与者的结果
func parseAIOrder(text string, names []string) (*OrderResponse, bool) {
	parsed, err := utils.DecodeJSON[aiOrder](text)
	if err != nil || len(parsed.Characters) != len(names) {
		return nil, false
	}

	got := make([]string, 0, len(parsed.Characters))
	for _, c := range parsed.Characters {
		got = append(got, strings.TrimSpace(c.Name))
	}
	want := slices.Clone(names)
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		return nil, false
	}

	characters := make([]model.Character, 0, len(parsed.Characters))
	for _, c := range parsed.Characters {
		character := model.Character{
			ID:            uuid.NewString(),
			Name:          strings.TrimSpace(c.Name),
			Role:          strings.TrimSpace(c.Role),
			Ability:       strings.TrimSpace(c.Ability),
			SpecialEffect: strings.TrimSpace(c.SpecialEffect),
		}
		if !slices.Contains(model.CharacterRoles, character.Role) {
			character.Role = pick(model.CharacterRoles)
		}
		if character.Ability == "" {
			character.Ability = pick(model.CharacterAbilities)
		}
		if !slices.Contains(model.CharacterEffects, character.SpecialEffect) {
			character.SpecialEffect = pick(model.CharacterEffects)
		}
		characters = append(characters, character)
	}

	return &OrderResponse{
		Characters: characters,
		Suggestion: strings.TrimSpace(parsed.Suggestion),
		Source:     OrderSourceAI,
	}, true
}

// fallbackOrder 从固定列表随机分配并打乱顺序
func fallbackOrder(names []string) *OrderResponse {
	characters := make([]model.Character, 0, len(names))
	for _, name := range names {
		characters = append(characters, model.Character{
			ID:            uuid.NewString(),
			Name:          name,
			Role:          pick(model.CharacterRoles),
			Ability:       pick(model.CharacterAbilities),
			SpecialEffect: pick(model.CharacterEffects),
		})
	}
	rand.Shuffle(len(characters), func(i, j int) {
		characters[i], characters[j] = characters[j], characters[i]
	})
	return &OrderResponse{Characters: characters, Source: OrderSourceFallback}
}

func pick(values []string) string {
	return values[rand.Intn(len(values))]
}
