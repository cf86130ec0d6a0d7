package models

func (Tenant) TableName() string        { return "tenants" }
func (TenantDomain) TableName() string  { return "tenant_domains" }
func (User) TableName() string          { return "users" }
func (VendorProfile) TableName() string { return "vendor_profiles" }
func (Product) TableName() string       { return "products" }
func (Order) TableName() string         { return "orders" }
func (DownloadLink) TableName() string  { return "download_links" }
func (Payout) TableName() string        { return "payouts" }
