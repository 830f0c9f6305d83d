package domain

// PageRequest 零基页码 + 页大小 + 排序，默认按 name 升序
type PageRequest struct {
	Page int
	Size int
	Sort string
	Desc bool
}

func DefaultPageRequest() PageRequest {
	return PageRequest{Page: 0, Size: 10, Sort: "name"}
}

func (p PageRequest) Offset() int { return p.Page * p.Size }

// 排序字段白名单：请求里的字段名 -> 列名，未知字段退回 name
var sortColumns = map[string]string{
	"name":      "name",
	"firstname": "firstname",
	"lastname":  "lastname",
	"dni":       "dni",
	"position":  "position",
	"birthdate": "birthdate",
	"createdAt": "created_at",
}

func (p PageRequest) OrderClause() string {
	col, ok := sortColumns[p.Sort]
	if !ok {
		col = "name"
	}
	if p.Desc {
		return col + " DESC"
	}
	return col + " ASC"
}

// Page 分页结果及总量元数据
type Page struct {
	Content       []Employee `json:"content"`
	Page          int        `json:"page"`
	Size          int        `json:"size"`
	TotalElements int64      `json:"totalElements"`
	TotalPages    int        `json:"totalPages"`
}

func NewPage(content []Employee, total int64, req PageRequest) *Page {
	if content == nil {
		content = []Employee{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}
