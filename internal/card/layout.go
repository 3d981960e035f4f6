package card

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type WeeklyLabels struct {
	Title         string `yaml:"title"`
	AltText       string `yaml:"alt_text"`
	TaskProgress  string `yaml:"task_progress"`
	TaskWeekly    string `yaml:"task_weekly"`
	ChecklistDone string `yaml:"checklist_done"`
	ChecklistWeek string `yaml:"checklist_weekly"`
	EmptyMembers  string `yaml:"empty_members"`
}

type SummaryLabels struct {
	Title           string `yaml:"title"`
	AltText         string `yaml:"alt_text"`
	ProjectName     string `yaml:"project_name"`
	TaskTotal       string `yaml:"task_total"`
	ResourceTotal   string `yaml:"resource_total"`
	Members         string `yaml:"members"`
	Attributes      string `yaml:"attributes"`
	TaskProgress    string `yaml:"task_progress"`
	ResourceCount   string `yaml:"resource_count"`
	CommentCount    string `yaml:"comment_count"`
	AverageRating   string `yaml:"average_rating"`
	ItemUnit        string `yaml:"item_unit"`
	TimesUnit       string `yaml:"times_unit"`
	MemberSeparator string `yaml:"member_separator"`
	Footer          string `yaml:"footer"`
}

type MenuLabels struct {
	WelcomeAltText string   `yaml:"welcome_alt_text"`
	WelcomeTitle   string   `yaml:"welcome_title"`
	WelcomeSteps   []string `yaml:"welcome_steps"`
	MenuAltText    string   `yaml:"menu_alt_text"`
	MenuTitle      string   `yaml:"menu_title"`
	WeeklyButton   string   `yaml:"weekly_button"`
	SummaryButton  string   `yaml:"summary_button"`
	ShareButton    string   `yaml:"share_button"`
	ShareData      string   `yaml:"share_postback"`
	SiteButton     string   `yaml:"site_button"`
	SiteURL        string   `yaml:"site_url"`
}

// Layout holds every style and label the card builders use.
type Layout struct {
	TextColor   string        `yaml:"text_color"`
	AccentColor string        `yaml:"accent_color"`
	MutedColor  string        `yaml:"muted_color"`
	Weekly      WeeklyLabels  `yaml:"weekly"`
	Summary     SummaryLabels `yaml:"summary"`
	Menu        MenuLabels    `yaml:"menu"`
}

func DefaultLayout() Layout {
	return Layout{
		TextColor:   "#153448",
		AccentColor: "#3C5B6F",
		MutedColor:  "#948979",
		Weekly: WeeklyLabels{
			Title:         "🧾 本週任務週報",
			AltText:       "📊 任務週報",
			TaskProgress:  "任務完成數與總數",
			TaskWeekly:    "本週完成任務",
			ChecklistDone: "檢核項目完成數",
			ChecklistWeek: "本週完成檢核項目",
			EmptyMembers:  "目前尚無成員加入專案",
		},
		Summary: SummaryLabels{
			Title:           "🗃️ 專案總結報表",
			AltText:         "🗃️ 專案總結報表",
			ProjectName:     "專案名稱",
			TaskTotal:       "任務總數",
			ResourceTotal:   "分享資源總數",
			Members:         "專案成員",
			Attributes:      "專案角色屬性",
			TaskProgress:    "任務完成數與總數",
			ResourceCount:   "分享專案資源數",
			CommentCount:    "建議與反思留言數",
			AverageRating:   "任務平均評分",
			ItemUnit:        "項",
			TimesUnit:       "次",
			MemberSeparator: "、",
			Footer:          "感謝大家對此專案的努力與貢獻！",
		},
		Menu: MenuLabels{
			WelcomeAltText: "計畫飄飄👻 開始使用說明",
			WelcomeTitle:   "計畫飄飄👻 開始使用",
			WelcomeSteps: []string{
				"1. 輸入「建立專案：專案名稱」建立新專案",
				"2. 依提示輸入專案階段數量",
				"3. 成員輸入「學號／姓名／加入專案」加入",
				"4. 輸入「本週結算」查看本週任務週報",
				"5. 輸入「生成專案報表」查看專案總結",
			},
			MenuAltText:   "呼叫飄飄👻",
			MenuTitle:     "飄飄來了👻 需要什麼幫忙？",
			WeeklyButton:  "本週結算",
			SummaryButton: "生成專案報表",
			ShareButton:   "分享資源",
			ShareData:     "explain_share",
			SiteButton:    "開啟專案網站",
			SiteURL:       "https://project-piaopiao-v1.vercel.app/",
		},
	}
}

// LoadLayout overlays the YAML file at path on the defaults. An empty path
// returns the defaults.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()
	if path == "" {
		return layout, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read card layout: %w", err)
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("parse card layout %s: %w", path, err)
	}
	return layout, nil
}
