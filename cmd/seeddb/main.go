package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"sitesearch-go-server/bootstrap"
	"sitesearch-go-server/domain/entity"
	"sitesearch-go-server/repository"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ========== 种子数据文件结构 ==========
// YAML 字段名与数据库列名保持一致，见 config/seed.example.yaml

type seedFile struct {
	Pages       []pageSeed       `yaml:"pages"`
	Domains     []domainSeed     `yaml:"domains"`
	Registry    registrySeed     `yaml:"registry"`
	SiteConfigs []siteConfigSeed `yaml:"site_configs"`
}

type pageSeed struct {
	UID            uint   `yaml:"uid"`
	PID            uint   `yaml:"pid"`
	Title          string `yaml:"title"`
	IsSiteroot     bool   `yaml:"is_siteroot"`
	Deleted        bool   `yaml:"deleted"`
	Hidden         bool   `yaml:"hidden"`
	Sorting        int    `yaml:"sorting"`
	SysLanguageUID int    `yaml:"sys_language_uid"`
}

type domainSeed struct {
	UID        uint   `yaml:"uid"`
	PID        uint   `yaml:"pid"`
	DomainName string `yaml:"domain_name"`
	Hidden     bool   `yaml:"hidden"`
	Sorting    int    `yaml:"sorting"`
}

// 连接的 rootPageUid / language 不在这里写，由组合键解析出来
type registrySeed struct {
	Servers map[string]connectionSeed `yaml:"servers"`
}

type connectionSeed struct {
	Scheme string `yaml:"scheme"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Path   string `yaml:"path"`
	Core   string `yaml:"core"`
}

type siteConfigSeed struct {
	RootPageID uint           `yaml:"root_page_id"`
	Config     map[string]any `yaml:"config"`
}

func main() {
	// 命令行参数
	file := flag.String("file", "config/seed.example.yaml", "种子数据 YAML 文件路径")
	flag.Parse()

	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ 未找到 .env 文件，使用系统环境变量")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("❌ DATABASE_URL 环境变量未设置")
	}

	// 读取并解析种子文件
	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("❌ 读取种子文件 %s 失败: %v", *file, err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		log.Fatalf("❌ 解析种子文件 %s 失败: %v", *file, err)
	}

	// 连接数据库
	db := bootstrap.NewDatabase(dsn)

	fmt.Println("🚀 开始写入种子数据...")

	seedPages(db, seed.Pages)
	seedDomains(db, seed.Domains)
	seedRegistry(db, seed.Registry)
	seedSiteConfigs(db, seed.SiteConfigs)

	fmt.Println("🎉 种子数据写入完成！")
}

// seedPages 写入内容树页面，重复执行时按 uid 覆盖
func seedPages(db *gorm.DB, pages []pageSeed) {
	for _, p := range pages {
		page := entity.Page{
			UID:            p.UID,
			PID:            p.PID,
			Title:          p.Title,
			IsSiteroot:     p.IsSiteroot,
			Deleted:        p.Deleted,
			Hidden:         p.Hidden,
			Sorting:        p.Sorting,
			SysLanguageUID: p.SysLanguageUID,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			UpdateAll: true,
		}).Create(&page).Error
		if err != nil {
			log.Fatalf("❌ 写入页面 %d 失败: %v", p.UID, err)
		}
	}
	log.Printf("✅ 已写入 %d 个页面", len(pages))
}

// seedDomains 写入域名绑定，重复执行时按 uid 覆盖
func seedDomains(db *gorm.DB, domains []domainSeed) {
	for _, d := range domains {
		record := entity.DomainRecord{
			UID:        d.UID,
			PID:        d.PID,
			DomainName: d.DomainName,
			Hidden:     d.Hidden,
			Sorting:    d.Sorting,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			UpdateAll: true,
		}).Create(&record).Error
		if err != nil {
			log.Fatalf("❌ 写入域名绑定 %d 失败: %v", d.UID, err)
		}
	}
	log.Printf("✅ 已写入 %d 条域名绑定", len(domains))
}

// seedRegistry 写入注册表 servers 条目
// 组合键是 rootPageUid 和 language 的唯一来源，坏键直接终止
func seedRegistry(db *gorm.DB, registry registrySeed) {
	if len(registry.Servers) == 0 {
		return
	}

	servers := make(map[string]entity.SearchConnection, len(registry.Servers))
	for key, conn := range registry.Servers {
		rootPageID, languageID, err := entity.ParseConnectionKey(key)
		if err != nil {
			log.Fatalf("❌ 种子文件里的连接键无效: %v", err)
		}
		servers[key] = entity.SearchConnection{
			RootPageID: rootPageID,
			LanguageID: languageID,
			Scheme:     conn.Scheme,
			Host:       conn.Host,
			Port:       conn.Port,
			Path:       conn.Path,
			Core:       conn.Core,
		}
	}

	value, err := json.Marshal(servers)
	if err != nil {
		log.Fatalf("❌ 序列化 servers 条目失败: %v", err)
	}

	registryRepo := repository.NewRegistryRepository(db)
	if err := registryRepo.Set(entity.RegistryNamespaceSearch, entity.RegistryKeyServers, datatypes.JSON(value)); err != nil {
		log.Fatalf("❌ 写入注册表失败: %v", err)
	}
	log.Printf("✅ 已写入注册表 servers 条目，共 %d 个连接", len(servers))
}

// seedSiteConfigs 写入站点级搜索配置
func seedSiteConfigs(db *gorm.DB, configs []siteConfigSeed) {
	siteConfigRepo := repository.NewSiteConfigRepository(db)
	for _, c := range configs {
		value, err := json.Marshal(c.Config)
		if err != nil {
			log.Fatalf("❌ 序列化站点 %d 的配置失败: %v", c.RootPageID, err)
		}
		err = siteConfigRepo.Save(&entity.SiteConfig{
			RootPageID: c.RootPageID,
			Config:     datatypes.JSON(value),
		})
		if err != nil {
			log.Fatalf("❌ 写入站点 %d 的配置失败: %v", c.RootPageID, err)
		}
	}
	log.Printf("✅ 已写入 %d 份站点配置", len(configs))
}
