package feishu

import (
	"context"
	"encoding/json"
	"fmt"
)

// =============================================================================
// 消息卡片服务 — 发送飞书交互式消息卡片
// 支持群聊和个人卡片发送，提供预设的通知卡片模板
// =============================================================================

// InteractiveCard 交互式卡片
type InteractiveCard struct {
	Config   *CardConfig   `json:"config,omitempty"`
	Header   *CardHeader   `json:"header,omitempty"`
	Elements []CardElement `json:"elements"`
}

type CardConfig struct {
	WideScreenMode bool `json:"wide_screen_mode"`
}

type CardHeader struct {
	Title    CardText `json:"title"`
	Template string   `json:"template,omitempty"` // blue/red/orange/green...
}

type CardText struct {
	Tag     string `json:"tag"` // plain_text / lark_md
	Content string `json:"content"`
}

type CardField struct {
	IsShort bool     `json:"is_short"`
	Text    CardText `json:"text"`
}

type CardElement struct {
	Tag     string       `json:"tag"` // div / hr / action
	Text    *CardText    `json:"text,omitempty"`
	Fields  []CardField  `json:"fields,omitempty"`
	Actions []CardAction `json:"actions,omitempty"`
}

type CardAction struct {
	Tag  string   `json:"tag"`
	Text CardText `json:"text"`
	Type string   `json:"type,omitempty"`
	URL  string   `json:"url,omitempty"`
}

// SendMessageResponse 发送消息响应
type SendMessageResponse struct {
	MessageID string `json:"message_id"`
}

// SendCard 向群聊发送消息卡片
func (c *FeishuClient) SendCard(ctx context.Context, chatID string, card InteractiveCard) error {
	return c.sendCard(ctx, "chat_id", chatID, card)
}

// SendUserCard 向个人发送消息卡片
// userID: 用户ID（open_id）
func (c *FeishuClient) SendUserCard(ctx context.Context, userID string, card InteractiveCard) error {
	return c.sendCard(ctx, "open_id", userID, card)
}

// sendCard 发送消息卡片的内部实现
func (c *FeishuClient) sendCard(ctx context.Context, idType, id string, card InteractiveCard) error {
	cardBytes, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("序列化卡片内容失败: %w", err)
	}

	reqBody := map[string]interface{}{
		"receive_id_type": idType,
		"receive_id":      id,
		"msg_type":        "interactive",
		"content":         string(cardBytes),
	}

	path := fmt.Sprintf("/open-apis/im/v1/messages?receive_id_type=%s", idType)

	var resp SendMessageResponse
	if err := c.doRequest(ctx, "POST", path, reqBody, &resp); err != nil {
		return fmt.Errorf("发送消息卡片失败: %w", err)
	}

	return nil
}

// =============================================================================
// 预设卡片模板 — 常用业务通知卡片
// =============================================================================

// NewSourcingAlertCard 创建采购异常预警通知卡片
// sheetNo: 订单编号
// productName: 产品名称
// vendorName: 供应商
// remarks: 异常备注
func NewSourcingAlertCard(sheetNo, productName, size, vendorName, remarks string, requiredQty float64) InteractiveCard {
	return InteractiveCard{
		Config: &CardConfig{WideScreenMode: true},
		Header: &CardHeader{
			Title:    CardText{Tag: "plain_text", Content: "⚠️ 采购异常预警"},
			Template: "red",
		},
		Elements: []CardElement{
			{
				Tag: "div",
				Fields: []CardField{
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**订单编号**\n%s", sheetNo)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**产品**\n%s %s", productName, size)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**需求数量**\n%.0f", requiredQty)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**供应商**\n%s", vendorName)}},
				},
			},
			{
				Tag:  "div",
				Text: &CardText{Tag: "lark_md", Content: fmt.Sprintf("采购行被标记为异常，请及时跟进。备注：%s", remarks)},
			},
		},
	}
}
