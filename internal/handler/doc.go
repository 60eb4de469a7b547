// Package handler 前台 HTTP 接口，按业务分子包：房态与住店 room、维修 maintenance、
// 收银 cashier、预订 reservation、报表 report、员工与商品 admin、智能助手 assistant。
//
// swag 从这里读取全局文档信息：
//
//	swag init -g doc.go --dir ./internal/handler,./internal/models --output ./docs
//
//	@title						Hotel FrontDesk API
//	@version					1.0
//	@description				酒店前台：房态、住店账目、叫醒、维修工单、收银班次与报表
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	Bearer
//	@in							header
//	@name						Authorization
//	@description				Bearer {access_token}
package handler
