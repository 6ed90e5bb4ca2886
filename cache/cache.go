// Package cache реализует ограниченный LRU-кэш с изолированными
// неймспейсами. Каждый неймспейс имеет собственную ёмкость и собственный
// порядок вытеснения: вставка в один неймспейс никогда не вытесняет
// записи из другого.
//
// Кэш не умеет сам ходить за данными: промах возвращает отсутствие,
// а заполнение — явная обязанность вызывающего после успешного фетча.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Namespace — изолированный домен вытеснения.
type Namespace string

const (
	// NamespaceUser хранит сырые ответы апстрима: standings, записи
	// пользователей, официальные результаты.
	NamespaceUser Namespace = "user"
	// NamespaceChannel хранит ростеры каналов и собранные батчи
	// предсказаний.
	NamespaceChannel Namespace = "channel"
)

// Entry — запись кэша. Принадлежит ровно одному неймспейсу.
type Entry struct {
	Key            string
	Value          interface{}
	LastAccessTime time.Time
}

type space struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[string]*list.Element
}

func newSpace(capacity int) *space {
	return &space{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func (s *space) get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(el)
	entry := el.Value.(*Entry)
	entry.LastAccessTime = time.Now()
	return entry.Value, true
}

func (s *space) put(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		entry := el.Value.(*Entry)
		entry.Value = value
		entry.LastAccessTime = time.Now()
		s.order.MoveToFront(el)
		return
	}

	if s.order.Len() >= s.capacity {
		oldest := s.order.Back()
		if oldest != nil {
			s.order.Remove(oldest)
			delete(s.items, oldest.Value.(*Entry).Key)
		}
	}

	s.items[key] = s.order.PushFront(&Entry{
		Key:            key,
		Value:          value,
		LastAccessTime: time.Now(),
	})
}

func (s *space) remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		s.order.Remove(el)
		delete(s.items, key)
	}
}

func (s *space) clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.order.Len()
	s.order.Init()
	s.items = make(map[string]*list.Element, s.capacity)
	return n
}

func (s *space) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Cache — набор LRU-неймспейсов. Создаётся один раз при старте процесса
// и передаётся компонентам явно; никакого глобального состояния.
type Cache struct {
	spaces map[Namespace]*space
}

// New создаёт кэш с заданными ёмкостями неймспейсов. Неймспейсы с
// неположительной ёмкостью не регистрируются.
func New(capacities map[Namespace]int) *Cache {
	spaces := make(map[Namespace]*space, len(capacities))
	for ns, capacity := range capacities {
		if capacity > 0 {
			spaces[ns] = newSpace(capacity)
		}
	}
	return &Cache{spaces: spaces}
}

// Get возвращает закэшированное значение и помечает его как недавно
// использованное. Промах — не ошибка.
func (c *Cache) Get(ns Namespace, key string) (interface{}, bool) {
	s, ok := c.spaces[ns]
	if !ok {
		return nil, false
	}
	return s.get(key)
}

// Put вставляет или заменяет значение. Если неймспейс заполнен,
// перед вставкой молча вытесняется самая давняя запись.
func (c *Cache) Put(ns Namespace, key string, value interface{}) {
	if s, ok := c.spaces[ns]; ok {
		s.put(key, value)
	}
}

// Remove удаляет одну запись, если она есть.
func (c *Cache) Remove(ns Namespace, key string) {
	if s, ok := c.spaces[ns]; ok {
		s.remove(key)
	}
}

// Clear очищает перечисленные неймспейсы (или все, если список пуст)
// и возвращает число удалённых записей. Очистка пустого кэша корректна
// и возвращает ноль.
func (c *Cache) Clear(namespaces ...Namespace) int {
	if len(namespaces) == 0 {
		for ns := range c.spaces {
			namespaces = append(namespaces, ns)
		}
	}
	cleared := 0
	for _, ns := range namespaces {
		if s, ok := c.spaces[ns]; ok {
			cleared += s.clear()
		}
	}
	return cleared
}

// Len возвращает текущее число записей в неймспейсе.
func (c *Cache) Len(ns Namespace) int {
	if s, ok := c.spaces[ns]; ok {
		return s.len()
	}
	return 0
}
